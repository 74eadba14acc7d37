package ui

import (
	"encoding/json"
	"fmt"
	"os"
)

// OutputFormat selects how commands like ps and version render their
// results.
type OutputFormat string

const (
	// FormatPretty is the human-readable default.
	FormatPretty OutputFormat = "pretty"
	// FormatJSON emits machine-readable JSON for scripting.
	FormatJSON OutputFormat = "json"
)

// ParseFormat converts the --format flag value to an OutputFormat.
// The empty string means pretty.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "pretty", "":
		return FormatPretty, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// Formatter renders command results in one output format.
type Formatter interface {
	// Output renders data to stdout.
	Output(data interface{}) error

	// OutputError renders an error to stderr.
	OutputError(err error) error

	// IsJSON reports whether output is machine-readable; commands use
	// this to skip table rendering.
	IsJSON() bool
}

type prettyFormatter struct{}

// NewPrettyFormatter creates the human-readable formatter.
func NewPrettyFormatter() Formatter {
	return &prettyFormatter{}
}

func (f *prettyFormatter) Output(data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Print(v)
	default:
		fmt.Println(v)
	}
	return nil
}

func (f *prettyFormatter) OutputError(err error) error {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorIcon, ErrorStyle.Render(err.Error()))
	return nil
}

func (f *prettyFormatter) IsJSON() bool { return false }

type jsonFormatter struct {
	encoder *json.Encoder
}

// NewJSONFormatter creates the JSON formatter.
func NewJSONFormatter() Formatter {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return &jsonFormatter{encoder: encoder}
}

func (f *jsonFormatter) Output(data interface{}) error {
	return f.encoder.Encode(data)
}

func (f *jsonFormatter) OutputError(err error) error {
	// Errors stay on stderr as plain text so stdout remains valid
	// JSON for whatever is consuming it.
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return nil
}

func (f *jsonFormatter) IsJSON() bool { return true }

// GlobalFormatter is the formatter selected by the root command's
// --format flag.
var GlobalFormatter Formatter = NewPrettyFormatter()

// SetGlobalFormatter switches the active formatter.
func SetGlobalFormatter(format OutputFormat) error {
	switch format {
	case FormatPretty:
		GlobalFormatter = NewPrettyFormatter()
	case FormatJSON:
		GlobalFormatter = NewJSONFormatter()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	return nil
}
