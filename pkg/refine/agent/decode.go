package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeReply strictly decodes a model reply into v.
//
// Models routinely wrap JSON in a markdown code fence despite being told
// not to; the fence is stripped before decoding. Anything that still
// isn't a single JSON object fails - intent is never guessed from prose.
func decodeReply(content string, v any) error {
	trimmed := stripFence(strings.TrimSpace(content))
	if err := json.Unmarshal([]byte(trimmed), v); err != nil {
		return fmt.Errorf("reply is not the expected JSON object: %w", err)
	}
	return nil
}

// stripFence removes a surrounding markdown code fence, if present.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag like "json" on the opening fence line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first != "" && !strings.ContainsAny(first, "{[") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
