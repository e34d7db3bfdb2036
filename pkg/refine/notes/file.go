package notes

import (
	"fmt"
	"os"
	"strings"
)

// FileSink appends finalized notes to a plain text file, one block per run.
type FileSink struct {
	path string
}

// NewFileSink creates a sink appending to the file at path.
// The file is created on first append.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Append implements Sink.
func (f *FileSink) Append(text string) error {
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open notes file: %w", err)
	}
	defer file.Close()

	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := file.WriteString(text); err != nil {
		return fmt.Errorf("append notes: %w", err)
	}
	return nil
}

// Path returns the backing file path.
func (f *FileSink) Path() string {
	return f.path
}
