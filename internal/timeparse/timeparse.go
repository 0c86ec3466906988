// Package timeparse extracts dates and times from unstructured text.
//
// Imported journal sources rarely carry clean timestamps: dates show up in
// filenames, in "DATE: 2022-10-01" headers, or buried mid-sentence. The
// extractors here scan for the first plausible match and leave the final
// fallback (to "now") to the caller.
package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar date without a time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// TimeOfDay is a wall-clock time without a date component.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// Patterns are validated syntactically, not calendarically: month 01-12 and
// day 01-31 pass even when the combination is invalid (e.g. 02-31).
//
// The hour range 00-29 is wider than a 24-hour clock. Entries imported by
// earlier releases were stored with this tolerance, so it is kept for
// compatibility with existing data.
var (
	dateRegex = regexp.MustCompile(`(\d{4})(?:/|-|\.)(0[1-9]|1[0-2])(?:/|-|\.)(0[1-9]|[12][0-9]|3[01])`)
	timeRegex = regexp.MustCompile(`([0-2][0-9]):([0-5][0-9]):([0-5][0-9])`)
)

// ExtractDate scans text for the first YYYY-MM-DD-like pattern
// (separators /, - or .) and returns it as a calendar date.
func ExtractDate(text string) (Date, bool) {
	m := dateRegex.FindStringSubmatch(text)
	if m == nil {
		return Date{}, false
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	return Date{Year: year, Month: time.Month(month), Day: day}, true
}

// ExtractTime scans text for the first HH:MM:SS pattern and returns it as a
// wall-clock time.
func ExtractTime(text string) (TimeOfDay, bool) {
	m := timeRegex.FindStringSubmatch(text)
	if m == nil {
		return TimeOfDay{}, false
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second, _ := strconv.Atoi(m[3])

	return TimeOfDay{Hour: hour, Minute: minute, Second: second}, true
}

// ExtractDateTime combines ExtractDate and ExtractTime over the same text.
// A found date without a time defaults to midnight; a found time without a
// date defaults to now's calendar day. When neither is found, ok is false
// and the caller applies its own fallback.
func ExtractDateTime(text string, now time.Time) (time.Time, bool) {
	d, haveDate := ExtractDate(text)
	tod, haveTime := ExtractTime(text)

	if !haveDate && !haveTime {
		return time.Time{}, false
	}

	if !haveDate {
		d = Date{Year: now.Year(), Month: now.Month(), Day: now.Day()}
	}

	return time.Date(d.Year, d.Month, d.Day, tod.Hour, tod.Minute, tod.Second, 0, time.Local), true
}

// isoLayouts are tried in order for strict ISO-8601 parsing.
var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// FormatISO requests strict ISO-8601 parsing from Coerce.
const FormatISO = "isoformat"

// Coerce resolves an arbitrary metadata value to a concrete timestamp.
// A time.Time passes through unchanged. A string with an ISO hint is parsed
// strictly (a trailing Z is tolerated, matching common export formats); a
// string with any other hint is parsed against that hint as a layout.
// Without a hint the value falls through to pattern extraction.
func Coerce(value any, hint string, now time.Time) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		if hint == FormatISO {
			s := strings.TrimSuffix(v, "Z")
			for _, layout := range isoLayouts {
				if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
					return t, true
				}
			}
			return time.Time{}, false
		}
		if hint != "" {
			t, err := time.ParseInLocation(hint, v, time.Local)
			if err != nil {
				return time.Time{}, false
			}
			return t, true
		}
		return ExtractDateTime(v, now)
	default:
		return time.Time{}, false
	}
}
