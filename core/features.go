package core

import (
	"fmt"
	"math"
	"slices"

	"github.com/huangsam/cgmprep/core/algo"
	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/schema"
)

// EncoderOptions selects how activity names become indicator columns.
type EncoderOptions struct {
	// Catalog fixes the activity columns. Empty means one column per distinct name in the data.
	Catalog []string

	// Other is the bucket for names outside Catalog. Unused without a catalog.
	Other string
}

// featureTableStages builds the Stage 2 steps from the run configuration.
func featureTableStages(cfg *contract.Config) []namedTableStage {
	filler := algo.IntervalFiller{Interval: cfg.SamplingInterval, OverrunThreshold: cfg.OverrunThreshold}
	opts := EncoderOptions{Catalog: cfg.Activities, Other: cfg.OtherActivity}
	return []namedTableStage{
		{name: "extract date features", run: ExtractDateFeatures()},
		{name: "normalize activities", run: NormalizeActivities()},
		{name: "encode activities", run: ActivityEncoding(filler, opts)},
	}
}

// ExtractDateFeatures derives day, month, year, hours_time and weekday from the
// timestamp and drops the timestamp. Weekday 0 is Monday. Missing timestamps give
// missing features.
func ExtractDateFeatures() TableStage {
	return func(t *schema.Table) error {
		col, ok := t.Column(schema.TimeColumn)
		if !ok || col.Kind != schema.TimeKind {
			return fmt.Errorf("%w: no %q timestamp column", schema.ErrFormat, schema.TimeColumn)
		}

		n := t.Len()
		day, month, year := nanSlice(n), nanSlice(n), nanSlice(n)
		hours, weekday := nanSlice(n), nanSlice(n)
		for i, ts := range col.Times() {
			if ts.IsZero() {
				continue
			}
			day[i] = float64(ts.Day())
			month[i] = float64(ts.Month())
			year[i] = float64(ts.Year())
			hours[i] = float64(ts.Hour()) + float64(ts.Minute())/60
			weekday[i] = float64((int(ts.Weekday()) + 6) % 7)
		}

		for _, c := range []*schema.Column{
			schema.NewFloatColumn(schema.DayColumn, day),
			schema.NewFloatColumn(schema.MonthColumn, month),
			schema.NewFloatColumn(schema.YearColumn, year),
			schema.NewFloatColumn(schema.HoursTimeColumn, hours),
			schema.NewFloatColumn(schema.WeekdayColumn, weekday),
		} {
			if err := t.SetColumn(c); err != nil {
				return err
			}
		}
		t.Drop(schema.TimeColumn)
		return nil
	}
}

// NormalizeActivities strips the duration annotation from activity labels. Before
// the label is shortened, a missing exercise duration is taken from it.
func NormalizeActivities() TableStage {
	return func(t *schema.Table) error {
		col, ok := t.Column(schema.ActivityColumn)
		if !ok {
			return nil
		}
		if col.Kind != schema.StringKind {
			return fmt.Errorf("%w: %q is a %s column", schema.ErrFormat, schema.ActivityColumn, col.Kind)
		}

		if !t.Has(schema.ExerciseColumn) {
			if err := t.SetColumn(schema.NewMissingFloatColumn(schema.ExerciseColumn, t.Len())); err != nil {
				return err
			}
		}
		if err := CoerceNumeric(t, schema.ExerciseColumn); err != nil {
			return err
		}
		exercise, _ := t.Column(schema.ExerciseColumn)
		minutes := exercise.Floats()

		labels, present := col.Strings()
		names := make([]string, len(labels))
		kept := make([]bool, len(labels))
		for i, label := range labels {
			if !present[i] {
				continue
			}
			if math.IsNaN(minutes[i]) {
				if m, ok := algo.LabelMinutes(label); ok {
					minutes[i] = m
				}
			}
			names[i] = algo.NormalizeActivity(label)
			kept[i] = names[i] != ""
		}
		return t.SetColumn(schema.NewStringColumn(schema.ActivityColumn, names, kept))
	}
}

// Annotations reads the per-row activity events for the interval filler.
// Rows without a duration carry zero minutes.
func Annotations(t *schema.Table) []algo.Annotation {
	events := make([]algo.Annotation, t.Len())
	col, ok := t.Column(schema.ActivityColumn)
	if !ok || col.Kind != schema.StringKind {
		return events
	}
	var minutes []float64
	if exercise, ok := t.Column(schema.ExerciseColumn); ok && exercise.Kind == schema.FloatKind {
		minutes = exercise.Floats()
	}
	for i := range events {
		name, ok := col.StringAt(i)
		if !ok {
			continue
		}
		events[i].Activity = name
		if minutes != nil && !math.IsNaN(minutes[i]) {
			events[i].Minutes = minutes[i]
		}
	}
	return events
}

// EncodeActivities adds one 0/1 column per activity. A row is 1 when it carries the
// activity itself or when fill marks it as a continuation. The activity and exercise
// duration columns are dropped afterwards.
//
// An activity named like another column of t is an ErrFormat and a catalog naming
// its own Other bucket or repeating an entry is an ErrConfig. t is unchanged on error.
func EncodeActivities(t *schema.Table, fill map[string][]bool, opts EncoderOptions) error {
	n := t.Len()
	events := Annotations(t)

	categories := opts.Catalog
	if len(categories) == 0 {
		seen := map[string]struct{}{}
		for _, ev := range events {
			if ev.Activity != "" {
				seen[ev.Activity] = struct{}{}
			}
		}
		for name := range fill {
			seen[name] = struct{}{}
		}
		categories = make([]string, 0, len(seen))
		for name := range seen {
			categories = append(categories, name)
		}
		slices.Sort(categories)
	} else {
		if opts.Other == "" {
			opts.Other = contract.DefaultOtherActivity
		}
		categories = append(slices.Clone(categories), opts.Other)
		seen := make(map[string]struct{}, len(categories))
		for _, name := range categories {
			if _, dup := seen[name]; dup {
				return fmt.Errorf("%w: activity %q is listed twice (other bucket %q)", schema.ErrConfig, name, opts.Other)
			}
			seen[name] = struct{}{}
		}
	}
	for _, name := range categories {
		if name != schema.ActivityColumn && name != schema.ExerciseColumn && t.Has(name) {
			return fmt.Errorf("%w: activity %q collides with the %q column", schema.ErrFormat, name, name)
		}
	}

	columns := make(map[string][]float64, len(categories))
	for _, name := range categories {
		columns[name] = make([]float64, n)
	}
	bucket := func(name string) []float64 {
		if values, ok := columns[name]; ok {
			return values
		}
		return columns[opts.Other]
	}

	for i, ev := range events {
		if ev.Activity != "" {
			bucket(ev.Activity)[i] = 1
		}
	}
	for name, marks := range fill {
		values := bucket(name)
		for i, marked := range marks {
			if marked && i < n {
				values[i] = 1
			}
		}
	}

	t.Drop(schema.ActivityColumn, schema.ExerciseColumn)
	for _, name := range categories {
		if err := t.SetColumn(schema.NewFloatColumn(name, columns[name])); err != nil {
			return err
		}
	}
	return nil
}

// ActivityEncoding runs the exercise interval fill and then the one-hot encoding.
func ActivityEncoding(filler algo.IntervalFiller, opts EncoderOptions) TableStage {
	return func(t *schema.Table) error {
		fill := filler.Fill(Annotations(t))
		return EncodeActivities(t, fill, opts)
	}
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
