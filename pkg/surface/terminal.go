package surface

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/microscan/microscan/pkg/scoring"
	"github.com/microscan/microscan/pkg/signal"
)

// TerminalRenderer renders RiskResult as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func tierColor(t scoring.Tier) string {
	if noColor() {
		return ""
	}
	switch t {
	case scoring.TierLow:
		return colorGreen
	case scoring.TierModerate:
		return colorYellow
	case scoring.TierHigh, scoring.TierCritical:
		return colorRed
	default:
		return ""
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) Render(w io.Writer, result *scoring.RiskResult) error {
	tc := tierColor(result.Tier)

	// Header
	fmt.Fprintf(w, "%s\n\n",
		bold(fmt.Sprintf("MicroScan %s: %s risk, score %d/100",
			result.Variant, colored(result.Tier.String(), tc), result.Score)))

	// Drivers
	if len(result.Drivers) == 0 {
		fmt.Fprintln(w, "No risk drivers.")
	} else {
		fmt.Fprintln(w, "Drivers:")
		for _, d := range result.Drivers {
			fmt.Fprintf(w, "  (+%s) %s\n", signal.FormatValue(d.Points), bold(d.Label))
		}
	}
	fmt.Fprintf(w, "  %s\n\n", dim(result.Details))

	// Silent contributions still show up in the score, so list them.
	var silent []string
	for _, c := range result.Breakdown {
		if c.Driver == "" && c.Points != 0 {
			silent = append(silent, fmt.Sprintf("%s +%s", c.Name, signal.FormatValue(c.Points)))
		}
	}
	if len(silent) > 0 {
		fmt.Fprintf(w, "Also counted: %s\n\n", dim(strings.Join(silent, ", ")))
	}

	// Actions
	fmt.Fprintln(w, "Recommended actions:")
	for i, a := range result.Actions {
		if i == 0 {
			fmt.Fprintf(w, "  %s %s\n", colored("●", tc), bold(a))
			continue
		}
		for j, line := range wrapText(a, 70) {
			if j == 0 {
				fmt.Fprintf(w, "  • %s\n", line)
			} else {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
	fmt.Fprintln(w)

	if p := result.Projection; p != nil {
		fmt.Fprintln(w, "Projection (simulated):")
		fmt.Fprintf(w, "  Satellite %s: NDVI anomaly %s, chlorophyll-a %s µg/L, cyanobacteria %s\n",
			p.Satellite.AnalysisDate, signal.FormatValue(p.Satellite.NDVIAnomaly),
			signal.FormatValue(p.Satellite.ChlorophyllA), p.Satellite.CyanobacteriaIndex)
		fmt.Fprintf(w, "  Nutrients: nitrogen %s mg/L, phosphorus %s mg/L\n",
			signal.FormatValue(p.Nutrients.Nitrogen), signal.FormatValue(p.Nutrients.Phosphorus))

		days := make([]string, 0, len(p.Forecast))
		for _, f := range p.Forecast {
			days = append(days, fmt.Sprintf("%s %d", f.Day, f.Risk))
		}
		fmt.Fprintf(w, "  7-day outlook (x%s/day): %s\n\n", signal.FormatValue(p.TrendFactor), strings.Join(days, " · "))
	}

	return nil
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
