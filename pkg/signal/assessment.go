package signal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Assessment is the structured result of the AI vision analysis. It is
// untrusted input: every field is optional and decoding tolerates wrongly
// typed fields by dropping them.
type Assessment struct {
	RiskScore       *float64      `json:"risk_score,omitempty"`
	Confidence      *float64      `json:"confidence,omitempty"`
	Mode            string        `json:"mode_detected,omitempty"`
	Severity        string        `json:"severity_level,omitempty"`
	Reasoning       string        `json:"reasoning_short,omitempty"`
	VisualAnalysis  string        `json:"visual_analysis,omitempty"`
	Breakdown       []FactorScore `json:"score_breakdown,omitempty"`
	Harms           []string      `json:"potential_harms,omitempty"`
	Recommendations []string      `json:"recommendations,omitempty"`
	Details         string        `json:"details,omitempty"`
	Tags            []string      `json:"tags,omitempty"`

	// Degraded is set when the assessment is a placeholder for a failed
	// or unavailable vision call.
	Degraded bool `json:"-"`
}

// FactorScore is one entry of the vision service's own score breakdown.
type FactorScore struct {
	Factor       string  `json:"factor"`
	Score        float64 `json:"score"`
	Contribution string  `json:"contribution,omitempty"`
}

// TagError marks a degraded assessment.
const TagError = "error"

// Degraded returns the placeholder assessment used when the vision service
// fails. It scores zero and carries the failure in Details.
func Degraded(err error) Assessment {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	return Assessment{
		RiskScore:  ptr(0),
		Confidence: ptr(0),
		Reasoning:  "Analysis Error",
		Details:    "AI Service Error: " + detail,
		Tags:       []string{TagError},
		Degraded:   true,
	}
}

// Demo returns the placeholder used when no vision API key is configured.
func Demo() Assessment {
	return Assessment{
		RiskScore:  ptr(50),
		Confidence: ptr(0),
		Reasoning:  "Demo Mode (No API Key)",
		Details:    "Vision API key not configured. Returning mock analysis.",
		Tags:       []string{"demo", "mock"},
	}
}

// IsError reports whether the assessment carries the error tag.
func (a Assessment) IsError() bool {
	for _, t := range a.Tags {
		if t == TagError {
			return true
		}
	}
	return a.Degraded
}

// VisualText is the lower-cased free text that keyword rules search.
func (a Assessment) VisualText() string {
	return strings.ToLower(a.VisualAnalysis + " " + a.Reasoning)
}

// Signals returns the numeric outputs of the assessment as signals.
func (a Assessment) Signals() Set {
	s := NewSet()
	if a.RiskScore != nil {
		s.Put(AIRisk, *a.RiskScore)
	}
	if a.Confidence != nil {
		s.Put(AIConfidence, *a.Confidence)
	}
	return s
}

// ParseAssessment decodes raw vision output. Markdown code fences around the
// JSON are removed first. Output that is not a JSON object produces a
// degraded assessment instead of an error.
func ParseAssessment(data []byte) Assessment {
	text := stripFences(string(data))
	if text == "" {
		return Degraded(errors.New("empty response"))
	}
	var a Assessment
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return Degraded(fmt.Errorf("decoding assessment: %w", err))
	}
	return a
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// UnmarshalJSON decodes field by field so a single malformed field does not
// discard the rest of the assessment. Only a non-object body is an error.
func (a *Assessment) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("assessment is null")
	}

	*a = Assessment{
		RiskScore:       number(fields["risk_score"]),
		Confidence:      number(fields["confidence"]),
		Mode:            text(fields["mode_detected"]),
		Severity:        text(fields["severity_level"]),
		Reasoning:       text(fields["reasoning_short"]),
		VisualAnalysis:  text(fields["visual_analysis"]),
		Breakdown:       factors(fields["score_breakdown"]),
		Harms:           texts(fields["potential_harms"]),
		Recommendations: texts(fields["recommendations"]),
		Details:         text(fields["details"]),
		Tags:            texts(fields["tags"]),
	}
	return nil
}

func number(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, ok := parseLeadingNumber(s); ok {
			return &v
		}
	}
	return nil
}

func text(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func texts(raw json.RawMessage) []string {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	var out []string
	for _, it := range items {
		if s := text(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func factors(raw json.RawMessage) []FactorScore {
	var items []map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	var out []FactorScore
	for _, it := range items {
		fs := FactorScore{
			Factor:       text(it["factor"]),
			Contribution: text(it["contribution"]),
		}
		if v := number(it["score"]); v != nil {
			fs.Score = *v
		}
		if fs.Factor == "" {
			continue
		}
		out = append(out, fs)
	}
	return out
}

func ptr(v float64) *float64 { return &v }

// Float64 returns the value of an optional number, or def when unset.
func Float64(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// FormatValue renders a measured value for driver text.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
