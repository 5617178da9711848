package models

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of every calendar date.
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate  = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidRange = errors.New("start date must be before end date")
)

// DateRange is a half-open interval [Start, End) of calendar dates stored
// as YYYY-MM-DD strings, so lexical order is chronological order.
type DateRange struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// NewDateRange parses both ends and requires start < end.
func NewDateRange(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	r := DateRange{Start: s.Format(DateLayout), End: e.Format(DateLayout)}
	if !r.Valid() {
		return DateRange{}, ErrInvalidRange
	}
	return r, nil
}

// Valid reports whether the range holds at least one night.
func (r DateRange) Valid() bool {
	return r.Start < r.End
}

// Overlaps is the strict half-open overlap test. Ranges that only touch
// (one ends the day the other starts) do not overlap.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.Start < o.End && o.Start < r.End
}

// Nights returns the number of nights between Start and End.
func (r DateRange) Nights() int {
	s, err1 := time.Parse(DateLayout, r.Start)
	e, err2 := time.Parse(DateLayout, r.End)
	if err1 != nil || err2 != nil || !e.After(s) {
		return 0
	}
	return int(e.Sub(s).Hours() / 24)
}

// EachNight returns the date of every night in the range.
func (r DateRange) EachNight() []time.Time {
	s, err1 := time.Parse(DateLayout, r.Start)
	e, err2 := time.Parse(DateLayout, r.End)
	if err1 != nil || err2 != nil {
		return nil
	}
	var nights []time.Time
	for d := s; d.Before(e); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d)
	}
	return nights
}

func (r DateRange) String() string {
	return r.Start + "/" + r.End
}
