package signal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Reading is one labelled telemetry value, e.g.
// "Temperature, water" -> "23.4 deg C".
type Reading struct {
	Label string
	Text  string
}

// Readings is an ordered set of labelled telemetry values. Order is the order
// the source supplied them in, which makes Lookup deterministic.
type Readings []Reading

// SensorReport is a telemetry payload from a monitoring site.
type SensorReport struct {
	SiteName   string   `json:"site_name,omitempty"`
	SiteCode   string   `json:"site_code,omitempty"`
	Parameters Readings `json:"parameters"`
}

// waterQualityFragments binds signals to the label fragment used to find them.
var waterQualityFragments = []struct {
	name     Name
	fragment string
}{
	{Temperature, "Temperature"},
	{PH, "pH"},
	{Turbidity, "Turbidity"},
	{DissolvedOxygen, "Dissolved oxygen"},
	{Conductance, "Conductance"},
}

// Lookup finds the first reading whose label contains fragment
// (case-insensitive) and parses the leading numeric token of its text.
// Only the first matching label is considered: if its value does not parse,
// the signal is absent even when a later label would have matched.
func (r Readings) Lookup(fragment string) (float64, bool) {
	frag := strings.ToLower(fragment)
	for _, rd := range r {
		if !strings.Contains(strings.ToLower(rd.Label), frag) {
			continue
		}
		return parseLeadingNumber(rd.Text)
	}
	return 0, false
}

// ExtractWaterQuality pulls the water-quality signals out of telemetry
// readings. A reading of zero is a present reading.
func ExtractWaterQuality(r Readings) Set {
	s := NewSet()
	for _, f := range waterQualityFragments {
		if v, ok := r.Lookup(f.fragment); ok {
			s.Put(f.name, v)
		}
	}
	return s
}

func parseLeadingNumber(text string) (float64, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// UnmarshalJSON decodes a JSON object while keeping key order. String values
// are kept verbatim, bare numbers keep their literal text, and anything else
// becomes an empty (unparseable) reading.
func (r *Readings) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decoding readings: %w", err)
	}
	if tok == nil {
		*r = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decoding readings: expected object, got %v", tok)
	}

	var out Readings
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decoding readings: %w", err)
		}
		label, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decoding reading %q: %w", label, err)
		}
		out = append(out, Reading{Label: label, Text: readingText(raw)})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decoding readings: %w", err)
	}

	*r = out
	return nil
}

// MarshalJSON encodes readings as a JSON object in their original order.
func (r Readings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rd := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(rd.Label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(rd.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func readingText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
