package surface

import (
	"encoding/json"
	"io"

	"github.com/microscan/microscan/pkg/scoring"
)

// JSONRenderer marshals RiskResult to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, result *scoring.RiskResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
