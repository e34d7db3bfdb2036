package config

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Cap policy names accepted in settings files.
const (
	CapForceFalse = "force-false"
	CapPreserve   = "preserve"
)

// Memory backend names accepted in settings files.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// Settings configures a refinement session.
type Settings struct {
	// MaxIterations bounds the producer loop. Must be at least 1.
	MaxIterations int `yaml:"max_iterations" json:"max_iterations"`

	// CapPolicy decides whether needs_more is forced false at the cap
	// ("force-false", the default) or left as the producer set it
	// ("preserve").
	CapPolicy string `yaml:"cap_policy" json:"cap_policy"`

	// StepTimeout bounds each producer call. Zero disables the bound.
	StepTimeout Duration `yaml:"step_timeout" json:"step_timeout"`

	Model   ModelSettings   `yaml:"model" json:"model"`
	Memory  MemorySettings  `yaml:"memory" json:"memory"`
	Notepad NotepadSettings `yaml:"notepad" json:"notepad"`
}

// ModelSettings selects the LLM models used by the agents.
type ModelSettings struct {
	// Research is the model the researcher queries.
	Research string `yaml:"research" json:"research"`
	// Finalize is the model the executor uses to format the summary.
	// A smaller, faster model is fine here.
	Finalize string `yaml:"finalize" json:"finalize"`
	// BaseURL overrides the API endpoint when set.
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	// MaxTokens caps the reply length when positive.
	MaxTokens int `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
}

// MemorySettings selects the persisted snapshot backend.
type MemorySettings struct {
	Backend string `yaml:"backend" json:"backend"`
	Path    string `yaml:"path" json:"path"`
}

// NotepadSettings configures the optional notes sink.
type NotepadSettings struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// Default returns the settings used when no file is provided.
func Default() Settings {
	return Settings{
		MaxIterations: 3,
		CapPolicy:     CapForceFalse,
		Model: ModelSettings{
			Research: "llama-3.3-70b-versatile",
			Finalize: "llama-3.1-8b-instant",
		},
		Memory: MemorySettings{
			Backend: BackendFile,
			Path:    "refine_memory.json",
		},
		Notepad: NotepadSettings{
			Enabled: false,
			Path:    "research_notepad.txt",
		},
	}
}

// Validate checks the settings for values the controller would reject.
func (s Settings) Validate() error {
	if s.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", s.MaxIterations)
	}
	switch s.CapPolicy {
	case CapForceFalse, CapPreserve:
	default:
		return fmt.Errorf("cap_policy must be %q or %q, got %q", CapForceFalse, CapPreserve, s.CapPolicy)
	}
	switch s.Memory.Backend {
	case BackendFile, BackendSQLite:
		if s.Memory.Path == "" {
			return fmt.Errorf("memory.path required for backend %q", s.Memory.Backend)
		}
	case BackendNone:
	default:
		return fmt.Errorf("memory.backend must be %q, %q or %q, got %q",
			BackendFile, BackendSQLite, BackendNone, s.Memory.Backend)
	}
	if s.Notepad.Enabled && s.Notepad.Path == "" {
		return fmt.Errorf("notepad.path required when notepad is enabled")
	}
	return nil
}

// Duration wraps time.Duration with YAML/JSON string decoding ("30s", "2m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	return d.parse(raw)
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return d.parse(raw)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) parse(raw string) error {
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}
