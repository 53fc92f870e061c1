package core

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/huangsam/cgmprep/core/algo"
	"github.com/huangsam/cgmprep/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDateFeatures(t *testing.T) {
	times := []time.Time{
		time.Date(2021, 2, 28, 13, 30, 0, 0, time.UTC), // Sunday
		{},
		time.Date(2021, 3, 1, 0, 5, 0, 0, time.UTC), // Monday
	}
	table := schema.NewTable()
	require.NoError(t, table.SetColumn(schema.NewTimeColumn(schema.TimeColumn, times)))

	require.NoError(t, ExtractDateFeatures()(table))

	assert.False(t, table.Has(schema.TimeColumn))
	assert.Equal(t, []string{"day", "month", "year", "hours_time", "weekday"}, table.Names())
	opts := cmpopts.EquateNaNs()
	assert.Empty(t, cmp.Diff([]float64{28, nan, 1}, floatsOf(t, table, schema.DayColumn), opts))
	assert.Empty(t, cmp.Diff([]float64{2, nan, 3}, floatsOf(t, table, schema.MonthColumn), opts))
	assert.Empty(t, cmp.Diff([]float64{2021, nan, 2021}, floatsOf(t, table, schema.YearColumn), opts))
	assert.Empty(t, cmp.Diff([]float64{13.5, nan, 5.0 / 60}, floatsOf(t, table, schema.HoursTimeColumn), opts))
	assert.Empty(t, cmp.Diff([]float64{6, nan, 0}, floatsOf(t, table, schema.WeekdayColumn), opts))
}

func TestExtractDateFeaturesNoTimestamp(t *testing.T) {
	table := schema.NewTable()
	require.NoError(t, table.SetColumn(schema.NewFloatColumn(schema.GlucoseColumn, []float64{5})))
	assert.ErrorIs(t, ExtractDateFeatures()(table), schema.ErrFormat)
}

func TestNormalizeActivities(t *testing.T) {
	table := rawDay(t, day0, dayRows{
		glucose:  []string{"5", "5", "5", "5"},
		activity: []string{" Walking (15 mins)", "Yoga", "", "(10 mins)"},
		exercise: []string{"", "", "", ""},
	})
	require.NoError(t, NormalizeActivities()(table))

	col, ok := table.Column(schema.ActivityColumn)
	require.True(t, ok)
	names, present := col.Strings()
	assert.Equal(t, []bool{true, true, false, false}, present, "a label that normalizes to empty is missing")
	assert.Equal(t, "Walking", names[0])
	assert.Equal(t, "Yoga", names[1])

	minutes := floatsOf(t, table, schema.ExerciseColumn)
	assert.Empty(t, cmp.Diff([]float64{15, nan, nan, 10}, minutes, cmpopts.EquateNaNs()), "minutes fall back to the label")
}

func TestNormalizeActivitiesKeepsRecordedMinutes(t *testing.T) {
	table := rawDay(t, day0, dayRows{
		glucose:  []string{"5"},
		activity: []string{"Running (30 mins)"},
		exercise: []string{"20"},
	})
	require.NoError(t, NormalizeActivities()(table))
	assert.Equal(t, []float64{20}, floatsOf(t, table, schema.ExerciseColumn))
}

func TestNormalizeActivitiesWithoutColumn(t *testing.T) {
	table := schema.NewTable()
	require.NoError(t, table.SetColumn(schema.NewFloatColumn(schema.GlucoseColumn, []float64{5})))
	require.NoError(t, NormalizeActivities()(table))
	assert.Equal(t, []string{schema.GlucoseColumn}, table.Names())
}

// activityTable builds a table holding only normalized activity names and minutes.
func activityTable(t *testing.T, names []string, minutes []float64) *schema.Table {
	t.Helper()
	table := schema.NewTable()
	require.NoError(t, table.SetColumn(stringColumn(schema.ActivityColumn, names)))
	require.NoError(t, table.SetColumn(schema.NewFloatColumn(schema.ExerciseColumn, minutes)))
	return table
}

func TestActivityEncodingBackFill(t *testing.T) {
	table := activityTable(t,
		[]string{"Walking", "", "", "", ""},
		[]float64{15, nan, nan, nan, nan},
	)
	require.NoError(t, ActivityEncoding(algo.NewIntervalFiller(), EncoderOptions{})(table))

	assert.Equal(t, []string{"Walking"}, table.Names(), "activity and exercise columns are dropped")
	assert.Equal(t, []float64{1, 1, 1, 0, 0}, floatsOf(t, table, "Walking"))
}

func TestActivityEncodingSupersede(t *testing.T) {
	table := activityTable(t,
		[]string{"Walking", "", "Running", "", "", ""},
		[]float64{30, nan, 10, nan, nan, nan},
	)
	require.NoError(t, ActivityEncoding(algo.NewIntervalFiller(), EncoderOptions{})(table))

	assert.Equal(t, []string{"Running", "Walking"}, table.Names(), "dynamic columns are sorted")
	assert.Equal(t, []float64{1, 1, 0, 0, 0, 0}, floatsOf(t, table, "Walking"))
	assert.Equal(t, []float64{0, 0, 1, 1, 0, 0}, floatsOf(t, table, "Running"))
}

func TestEncodeActivitiesCatalog(t *testing.T) {
	table := activityTable(t,
		[]string{"Walking", "", "Swimming", ""},
		[]float64{10, nan, 10, nan},
	)
	fill := map[string][]bool{
		"Walking":  {false, true, false, false},
		"Swimming": {false, false, false, true},
	}
	opts := EncoderOptions{Catalog: []string{"Walking", "Running"}, Other: "other"}
	require.NoError(t, EncodeActivities(table, fill, opts))

	assert.Equal(t, []string{"Walking", "Running", "other"}, table.Names())
	assert.Equal(t, []float64{1, 1, 0, 0}, floatsOf(t, table, "Walking"))
	assert.Equal(t, []float64{0, 0, 0, 0}, floatsOf(t, table, "Running"))
	assert.Equal(t, []float64{0, 0, 1, 1}, floatsOf(t, table, "other"))
}

func TestEncodeActivitiesNoActivity(t *testing.T) {
	table := schema.NewTable()
	require.NoError(t, table.SetColumn(schema.NewFloatColumn(schema.GlucoseColumn, []float64{5, 6})))
	require.NoError(t, EncodeActivities(table, nil, EncoderOptions{}))
	assert.Equal(t, []string{schema.GlucoseColumn}, table.Names())
}

func TestAnnotations(t *testing.T) {
	table := activityTable(t, []string{"Walking", "", "Yoga"}, []float64{15, nan, nan})
	assert.Equal(t, []algo.Annotation{
		{Activity: "Walking", Minutes: 15},
		{},
		{Activity: "Yoga", Minutes: 0},
	}, Annotations(table))
}

func TestEncodeActivitiesNameCollision(t *testing.T) {
	table := activityTable(t, []string{"trend", ""}, []float64{nan, nan})
	require.NoError(t, table.SetColumn(schema.NewFloatColumn(schema.TrendColumn, []float64{3, 4})))

	err := EncodeActivities(table, nil, EncoderOptions{})
	require.ErrorIs(t, err, schema.ErrFormat)
	assert.Equal(t, []float64{3, 4}, floatsOf(t, table, schema.TrendColumn), "feature column is kept")
	assert.True(t, table.Has(schema.ActivityColumn), "table is unchanged")
}

func TestEncodeActivitiesCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		opts EncoderOptions
	}{
		{name: "other bucket in catalog", opts: EncoderOptions{Catalog: []string{"Walking", "other"}, Other: "other"}},
		{name: "repeated entry", opts: EncoderOptions{Catalog: []string{"Walking", "Walking"}, Other: "other"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := activityTable(t, []string{"Walking"}, []float64{10})
			assert.ErrorIs(t, EncodeActivities(table, nil, tt.opts), schema.ErrConfig)
		})
	}
}
