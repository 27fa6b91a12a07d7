package signal

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadReport reads a sensor report from disk. A file that is not a report
// object is an error; individual unreadable values are not.
func LoadReport(path string) (*SensorReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sensor report: %w", err)
	}

	var rep SensorReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("unmarshaling sensor report: %w", err)
	}

	return &rep, nil
}

// LoadAssessment reads saved vision output from disk. Unparseable content
// yields a degraded assessment rather than an error.
func LoadAssessment(path string) (Assessment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Assessment{}, fmt.Errorf("reading assessment: %w", err)
	}
	return ParseAssessment(data), nil
}
