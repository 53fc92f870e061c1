package contract

import (
	"testing"

	"github.com/huangsam/cgmprep/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSheetName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "within month", input: "Sat Feb 20, 2021", expected: "Sun Feb 21, 2021"},
		{name: "single digit day", input: "Mon Mar 1, 2021", expected: "Tue Mar 2, 2021"},
		{name: "two to one digit", input: "Sat Feb 27, 2021", expected: "Sun Feb 28, 2021"},
		{name: "february rollover", input: "Sun Feb 28, 2021", expected: "Mon Mar 1, 2021"},
		{name: "thirty day month", input: "Fri Apr 30, 2021", expected: "Sat May 1, 2021"},
		{name: "year rollover", input: "Thu Dec 31, 2020", expected: "Fri Jan 1, 2021"},
		{name: "sunday to monday", input: "Sun Dec 31, 2020", expected: "Mon Jan 1, 2021"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextSheetName(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseSheetNameInvalid(t *testing.T) {
	inputs := []string{
		"",
		"Sat Feb 27 2021",
		"Xyz Feb 27, 2021",
		"Sat Foo 27, 2021",
		"Sat Feb 29, 2021",
		"Sat Feb 0, 2021",
		"Sat Feb 123, 2021",
		"Sat Feb 27, 21",
		"Sat Feb 27, 2021 extra",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := ParseSheetName(in)
			assert.ErrorIs(t, err, schema.ErrConfig)
		})
	}
}

func TestSheetNames(t *testing.T) {
	names, err := SheetNames("Sat Feb 27, 2021", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sat Feb 27, 2021", "Sun Feb 28, 2021", "Mon Mar 1, 2021"}, names)

	_, err = SheetNames("Sat Feb 27, 2021", 0)
	assert.ErrorIs(t, err, schema.ErrConfig)
}

func TestSheetDateString(t *testing.T) {
	d, err := ParseSheetName("Wed Dec 30, 2020")
	require.NoError(t, err)
	assert.Equal(t, "Wed Dec 30, 2020", d.String())
	assert.Equal(t, SheetDate{Weekday: 2, Month: 11, Day: 30, Year: 2020}, d)
}
