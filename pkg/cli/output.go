package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output, for tabular results only.
	FormatCSV OutputFormat = "csv"
)

// ParseFormat validates an --output flag value. Empty means text.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", NewConfigError("output", fmt.Sprintf("unknown format %q (use text, json or csv)", s))
	}
}

// Formatter formats command output.
type Formatter interface {
	FormatTo(w io.Writer, data any) error
}

// TextWriter is implemented by results with their own text rendering.
type TextWriter interface {
	WriteText(w io.Writer) error
}

// CSVWriter is implemented by tabular results.
type CSVWriter interface {
	WriteCSV(w io.Writer) error
}

// TextFormatter formats output as plain text.
type TextFormatter struct{}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data any) error {
	if tw, ok := data.(TextWriter); ok {
		return tw.WriteText(w)
	}
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// CSVFormatter formats tabular output as CSV.
type CSVFormatter struct{}

// FormatTo writes data to writer in CSV format. It fails for results that
// are not tabular.
func (f *CSVFormatter) FormatTo(w io.Writer, data any) error {
	cw, ok := data.(CSVWriter)
	if !ok {
		return NewConfigError("output", "csv is not supported for this command")
	}
	return cw.WriteCSV(w)
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TextFormatter{}
	}
}
