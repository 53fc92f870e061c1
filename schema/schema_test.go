package schema

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableSetColumn(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.SetColumn(NewFloatColumn("a", []float64{1, 2, 3})))
	assert.Equal(t, 3, tbl.Len())

	err := tbl.SetColumn(NewFloatColumn("b", []float64{1}))
	assert.Error(t, err, "length mismatch must be rejected")

	require.NoError(t, tbl.SetColumn(NewStringColumn("a", []string{"x", "y", "z"}, nil)))
	c, ok := tbl.Column("a")
	require.True(t, ok)
	assert.Equal(t, StringKind, c.Kind, "same name replaces in place")
	assert.Equal(t, []string{"a"}, tbl.Names())
}

func TestTableDrop(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.SetColumn(NewFloatColumn("a", []float64{1})))
	require.NoError(t, tbl.SetColumn(NewFloatColumn("b", []float64{2})))
	tbl.Drop("a", "missing")
	assert.Equal(t, []string{"b"}, tbl.Names())
	assert.Equal(t, 1, tbl.Len())
}

func TestColumnMissing(t *testing.T) {
	f := NewFloatColumn("f", []float64{1, math.NaN()})
	assert.False(t, f.IsMissing(0))
	assert.True(t, f.IsMissing(1))

	s := NewStringColumn("s", []string{"", ""}, []bool{true, false})
	assert.False(t, s.IsMissing(0), "empty but present string is not missing")
	assert.True(t, s.IsMissing(1))
	v, ok := s.StringAt(1)
	assert.False(t, ok)
	assert.Empty(t, v)

	tm := NewTimeColumn("t", []time.Time{{}, time.Now()})
	assert.True(t, tm.IsMissing(0))
	assert.Equal(t, 1, tm.MissingCount())
}

func TestConcat(t *testing.T) {
	first := NewTable()
	require.NoError(t, first.SetColumn(NewFloatColumn("a", []float64{1, 2})))
	require.NoError(t, first.SetColumn(NewStringColumn("s", []string{"x", "y"}, nil)))

	second := NewTable()
	require.NoError(t, second.SetColumn(NewFloatColumn("a", []float64{3})))
	require.NoError(t, second.SetColumn(NewFloatColumn("b", []float64{9})))

	out, err := Concat(first, nil, second)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())
	assert.Equal(t, []string{"a", "s", "b"}, out.Names())

	a, _ := out.Column("a")
	assert.Equal(t, []float64{1, 2, 3}, a.Floats())

	s, _ := out.Column("s")
	assert.True(t, s.IsMissing(2))

	b, _ := out.Column("b")
	assert.True(t, b.IsMissing(0))
	assert.True(t, b.IsMissing(1))
	assert.Equal(t, 9.0, b.Floats()[2])

	// Inputs stay untouched.
	assert.Equal(t, 2, first.Len())
}

func TestConcatKindMismatch(t *testing.T) {
	first := NewTable()
	require.NoError(t, first.SetColumn(NewFloatColumn("a", []float64{1})))
	second := NewTable()
	require.NoError(t, second.SetColumn(NewStringColumn("a", []string{"x"}, nil)))

	_, err := Concat(first, second)
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.SetColumn(NewFloatColumn("a", []float64{1})))
	cp := tbl.Clone()
	c, _ := cp.Column("a")
	c.Floats()[0] = 5

	orig, _ := tbl.Column("a")
	assert.Equal(t, 1.0, orig.Floats()[0])
}

func TestErrorKinds(t *testing.T) {
	var err error = &CoercionError{Column: "mmol/L", Row: 3, Value: "abc"}
	assert.True(t, errors.Is(err, ErrFormat))
	assert.Contains(t, err.Error(), "row 3")

	err = &TrendSymbolError{Row: 1, Symbol: "x"}
	assert.True(t, errors.Is(err, ErrFormat))
	assert.False(t, errors.Is(err, ErrConfig))
}

func TestPipelineResultStatus(t *testing.T) {
	r := &PipelineResult{}
	assert.Equal(t, RunComplete, r.Status())
	assert.False(t, r.Partial())

	r.Failure = &DayOutcome{Sheet: "Mon Jan 4, 2021"}
	assert.Equal(t, RunEmpty, r.Status())

	r.Summary.DaysLoaded = 2
	assert.Equal(t, RunPartial, r.Status())
	assert.True(t, r.Partial())
}
