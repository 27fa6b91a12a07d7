package surface

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/microscan/microscan/pkg/scoring"
	"github.com/microscan/microscan/pkg/signal"
)

// Disclaimer is appended to every published advisory.
const Disclaimer = "Screening estimate only. Not a calibrated scientific measurement; confirm with laboratory analysis."

// AdvisoryRenderer produces a markdown advisory from a RiskResult.
type AdvisoryRenderer struct {
	// AsJSON wraps the advisory in a JSON envelope instead of writing raw
	// markdown.
	AsJSON bool
}

func (r *AdvisoryRenderer) Render(w io.Writer, result *scoring.RiskResult) error {
	data := r.BuildAdvisory(result)
	if !r.AsJSON {
		_, err := io.WriteString(w, data.Summary)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// BuildAdvisory creates the Advisory struct from a RiskResult.
func (r *AdvisoryRenderer) BuildAdvisory(result *scoring.RiskResult) Advisory {
	return Advisory{
		Title:    fmt.Sprintf("%s risk: %s (score %d)", variantTitle(result.Variant), result.Tier, result.Score),
		Summary:  buildMarkdownSummary(result),
		Severity: tierToSeverity(result.Tier),
	}
}

func tierToSeverity(t scoring.Tier) string {
	switch t {
	case scoring.TierHigh, scoring.TierCritical:
		return "warning"
	case scoring.TierModerate:
		return "watch"
	default:
		return "info"
	}
}

func variantTitle(v scoring.Variant) string {
	switch v {
	case scoring.VariantAlgae:
		return "Harmful algal bloom"
	case scoring.VariantMicroplastic:
		return "Microplastic contamination"
	default:
		return string(v)
	}
}

func buildMarkdownSummary(result *scoring.RiskResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## %s %s risk, score %d/100\n\n", tierIcon(result.Tier), result.Tier, result.Score)

	sb.WriteString("### Drivers\n\n")
	if len(result.Drivers) == 0 {
		sb.WriteString("_No risk drivers detected._\n")
	}
	for _, d := range result.Drivers {
		fmt.Fprintf(&sb, "- **%s** (+%s)\n", d.Label, signal.FormatValue(d.Points))
	}
	sb.WriteString("\n")

	sb.WriteString("### Recommended Actions\n\n")
	for i, a := range result.Actions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, a)
	}
	sb.WriteString("\n")

	if p := result.Projection; p != nil && len(p.Forecast) > 0 {
		sb.WriteString("### 7-Day Outlook (simulated)\n\n")
		sb.WriteString("| Day | Risk |\n|-----|------|\n")
		for _, f := range p.Forecast {
			fmt.Fprintf(&sb, "| %s | %d |\n", f.Day, f.Risk)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "_%s_\n", Disclaimer)
	return sb.String()
}

func tierIcon(t scoring.Tier) string {
	switch t {
	case scoring.TierCritical:
		return ":red_circle:"
	case scoring.TierHigh:
		return ":orange_circle:"
	case scoring.TierModerate:
		return ":yellow_circle:"
	default:
		return ":green_circle:"
	}
}
