package scoring

import "fmt"

// Explanation is the human-facing account of a score.
type Explanation struct {
	Drivers []Driver
	Details string
}

// Explain collects drivers from contributions in evaluation order. Only
// contributions with nonzero points and driver text produce a driver.
func Explain(contribs []Contribution) Explanation {
	drivers := []Driver{}
	for _, c := range contribs {
		if c.Points == 0 || c.Driver == "" {
			continue
		}
		drivers = append(drivers, Driver{Label: c.Driver, Points: c.Points})
	}
	return Explanation{
		Drivers: drivers,
		Details: fmt.Sprintf("Analysis of %d factors.", len(drivers)),
	}
}
