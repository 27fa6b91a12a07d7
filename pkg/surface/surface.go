// Package surface renders scored risk results for different audiences:
// an operator at a terminal, machine consumers reading JSON, and a public
// markdown advisory.
package surface

import (
	"io"

	"github.com/microscan/microscan/pkg/scoring"
)

// Renderer produces formatted output from a RiskResult.
type Renderer interface {
	// Render writes the formatted result to the writer.
	Render(w io.Writer, result *scoring.RiskResult) error
}

// Advisory holds a publishable summary of a result.
type Advisory struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`  // Markdown body
	Severity string `json:"severity"` // info, watch, warning
}

// ForFormat returns the renderer for a named output format: "text", "json"
// or "markdown". Unknown formats return nil.
func ForFormat(format string) Renderer {
	switch format {
	case "text", "":
		return &TerminalRenderer{}
	case "json":
		return &JSONRenderer{}
	case "markdown", "md":
		return &AdvisoryRenderer{}
	default:
		return nil
	}
}
