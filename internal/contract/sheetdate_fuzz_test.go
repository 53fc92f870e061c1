package contract

import (
	"testing"
)

// FuzzParseSheetName fuzzes ParseSheetName and checks that accepted names round-trip.
func FuzzParseSheetName(f *testing.F) {
	seeds := []string{
		"Sat Feb 27, 2021",
		"Sun Dec 31, 2020",
		"Mon Jan 1, 2021",
		"Wed Sep 09, 2021",
		"Feb 27, 2021",
		"Sat Feb 30, 2021", // edge case
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		d, err := ParseSheetName(input)
		if err != nil {
			return
		}
		again, err := ParseSheetName(d.String())
		if err != nil {
			t.Fatalf("rendered name %q of %q does not parse: %v", d.String(), input, err)
		}
		if again != d {
			t.Fatalf("round trip of %q changed %+v to %+v", input, d, again)
		}
		if _, err := NextSheetName(d.String()); err != nil {
			t.Fatalf("next of %q failed: %v", d.String(), err)
		}
	})
}
