package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/prscore/internal/maturity"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format outputs the report as a JSON document
func (f *JSONFormatter) Format(r *maturity.Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(r)
}
