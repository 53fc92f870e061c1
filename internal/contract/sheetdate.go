package contract

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/cgmprep/schema"
)

var (
	weekdayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	monthNames   = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

	// monthDays uses a fixed 28-day February; the export never names a leap day.
	monthDays = []int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
)

// SheetDate is a parsed sheet name such as "Sat Feb 27, 2021".
type SheetDate struct {
	Weekday int // 0 = Mon
	Month   int // 0 = Jan
	Day     int
	Year    int
}

// String renders the date in sheet-name form.
func (d SheetDate) String() string {
	return fmt.Sprintf("%s %s %d, %d", weekdayNames[d.Weekday], monthNames[d.Month], d.Day, d.Year)
}

// Next returns the following calendar day.
func (d SheetDate) Next() SheetDate {
	next := d
	next.Weekday = (d.Weekday + 1) % len(weekdayNames)
	next.Day++
	if next.Day > monthDays[d.Month] {
		next.Day = 1
		next.Month = (d.Month + 1) % len(monthNames)
	}
	if next.Month == 0 && next.Day == 1 {
		next.Year++
	}
	return next
}

// ParseSheetName parses "DDD MMM D, YYYY" with a one or two digit day.
// Malformed names wrap schema.ErrConfig.
func ParseSheetName(name string) (SheetDate, error) {
	fail := func(reason string) (SheetDate, error) {
		return SheetDate{}, fmt.Errorf("%w: invalid sheet name %q: %s", schema.ErrConfig, name, reason)
	}

	parts := strings.Fields(name)
	if len(parts) != 4 {
		return fail("expected form 'Sat Feb 27, 2021'")
	}

	weekday := slices.Index(weekdayNames, parts[0])
	if weekday < 0 {
		return fail("unknown weekday " + parts[0])
	}
	month := slices.Index(monthNames, parts[1])
	if month < 0 {
		return fail("unknown month " + parts[1])
	}

	dayStr, ok := strings.CutSuffix(parts[2], ",")
	if !ok || len(dayStr) == 0 || len(dayStr) > 2 || !isDigits(dayStr) {
		return fail("day must be one or two digits followed by a comma")
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > monthDays[month] {
		return fail("day out of range")
	}

	year, err := strconv.Atoi(parts[3])
	if err != nil || len(parts[3]) != 4 || !isDigits(parts[3]) || parts[3][0] == '0' {
		return fail("year must have four digits")
	}

	return SheetDate{Weekday: weekday, Month: month, Day: day, Year: year}, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NextSheetName returns the name of the sheet for the day after name.
func NextSheetName(name string) (string, error) {
	d, err := ParseSheetName(name)
	if err != nil {
		return "", err
	}
	return d.Next().String(), nil
}

// SheetNames returns days consecutive sheet names starting at start.
func SheetNames(start string, days int) ([]string, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: days must be at least 1 (received %d)", schema.ErrConfig, days)
	}
	d, err := ParseSheetName(start)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, days)
	for range days {
		names = append(names, d.String())
		d = d.Next()
	}
	return names, nil
}
