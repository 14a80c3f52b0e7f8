package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormat identifies a command output format.
type OutputFormat string

const (
	// FormatText renders results as human-readable text.
	FormatText OutputFormat = "text"

	// FormatJSON renders results as indented JSON.
	FormatJSON OutputFormat = "json"
)

// Formatter renders command results to a writer.
type Formatter interface {
	FormatTo(w io.Writer, data any) error
}

// TextFormatter renders data with fmt's default formatting. Types that
// implement fmt.Stringer control their own text rendering.
type TextFormatter struct{}

// FormatTo writes the text rendering of data.
func (f *TextFormatter) FormatTo(w io.Writer, data any) error {
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// JSONFormatter renders data as indented JSON.
type JSONFormatter struct{}

// FormatTo writes the JSON rendering of data.
func (f *JSONFormatter) FormatTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// NewFormatter returns the formatter for the given format, defaulting to
// text for unknown formats.
func NewFormatter(format OutputFormat) Formatter {
	if format == FormatJSON {
		return &JSONFormatter{}
	}
	return &TextFormatter{}
}
