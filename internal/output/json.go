package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// FprintJSON serializes v to w as JSON, one value per line unless pretty.
func FprintJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}
