package output

import (
	"fmt"
	"io"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat validates a --format flag value. Empty means YAML.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatYAML:
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use yaml, json, or text)", s)
	}
}

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// Texter is implemented by results with a human-readable rendering.
// Values without one fall back to YAML in text mode.
type Texter interface {
	WriteText(w io.Writer) error
}

// Fprint serializes v to w in the given format.
func Fprint(w io.Writer, format Format, v interface{}) error {
	switch format {
	case FormatJSON:
		return FprintJSON(w, v, PrettyOutput)
	case FormatYAML:
		return FprintYAML(w, v)
	case FormatText:
		if t, ok := v.(Texter); ok {
			return t.WriteText(w)
		}
		return FprintYAML(w, v)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
