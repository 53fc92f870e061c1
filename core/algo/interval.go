package algo

import "time"

// Default exercise fill parameters.
const (
	DefaultSamplingInterval = 5 * time.Minute
	DefaultOverrunThreshold = -3.0 // minutes
)

// Annotation is the activity seen on one row. An empty Activity means the row
// carries no annotation.
type Annotation struct {
	Activity string
	Minutes  float64
}

// IntervalFiller reconstructs exercise intervals from sparse annotations.
type IntervalFiller struct {
	// Interval is the time between consecutive rows.
	Interval time.Duration

	// OverrunThreshold is the remaining-minutes value at or below which a row
	// past the end of the exercise is not counted. It must be negative.
	OverrunThreshold float64
}

// NewIntervalFiller returns a filler with the default parameters.
func NewIntervalFiller() IntervalFiller {
	return IntervalFiller{Interval: DefaultSamplingInterval, OverrunThreshold: DefaultOverrunThreshold}
}

// Fill folds over events in row order and returns, per annotated activity, the rows
// that continue an interval started on an earlier row. Onset rows are never marked.
// Every activity seen in events has an entry, even without continuation rows.
func (f IntervalFiller) Fill(events []Annotation) map[string][]bool {
	step := f.Interval.Minutes()
	fill := make(map[string][]bool)

	active := ""
	remaining := 0.0
	for i, ev := range events {
		if active != "" && remaining > 0 && ev.Activity == "" {
			marks := fill[active]
			marks[i] = true
			remaining -= step
			if remaining < 0 && remaining <= f.OverrunThreshold {
				marks[i] = false
			}
			if remaining <= 0 {
				active, remaining = "", 0
			}
		}

		if ev.Activity != "" {
			if _, ok := fill[ev.Activity]; !ok {
				fill[ev.Activity] = make([]bool, len(events))
			}
			active = ev.Activity
			remaining = ev.Minutes - step
		}
	}
	return fill
}
