package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// PatternType is the recurrence cadence.
// Value object - immutable string enum.
type PatternType string

const (
	PatternDaily   PatternType = "DAILY"
	PatternWeekly  PatternType = "WEEKLY"
	PatternMonthly PatternType = "MONTHLY"
	PatternYearly  PatternType = "YEARLY"
)

// NewPatternType validates and creates a PatternType.
func NewPatternType(s string) (PatternType, error) {
	t := PatternType(strings.ToUpper(s))
	switch t {
	case PatternDaily, PatternWeekly, PatternMonthly, PatternYearly:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidPatternType, s)
	}
}

// MonthPatternType selects how MONTHLY patterns pick days.
type MonthPatternType string

const (
	// MonthByDate repeats on fixed calendar days (daysOfMonth).
	MonthByDate MonthPatternType = "BY_DATE"
	// MonthByDay repeats on an nth-weekday rule (nthWeekdayOccurrence).
	MonthByDay MonthPatternType = "BY_DAY"
)

// LastDayOfMonth is the daysOfMonth sentinel resolving to the final calendar
// day of each month (28-31 depending on month and leap year).
const LastDayOfMonth = -1

// LastOccurrence is the nthWeekdayOccurrence ordinal sentinel meaning the
// last matching weekday of the month.
const LastOccurrence = -1

// NthWeekday describes rules such as "2nd Tuesday" or "last Friday".
type NthWeekday struct {
	// Ordinal is 1..5, or LastOccurrence for the final matching weekday.
	Ordinal int `json:"ordinal"`
	// Weekday uses 0=Sunday .. 6=Saturday.
	Weekday int `json:"weekday"`
}

// YearlyDate is the anchor month/day for YEARLY patterns.
type YearlyDate struct {
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// TimeOfDay is a wall-clock HH:MM, interpreted in the pattern's time zone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MarshalJSON encodes the wall-clock time as "HH:MM".
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

// UnmarshalJSON decodes "HH:MM".
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimeOfDay, data)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Date is a civil calendar date with no time-of-day or zone attached.
// It marshals as "2006-01-02".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf extracts the civil date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d == Date{} }

// At returns the absolute instant of the given wall-clock time on this date
// in loc.
func (d Date) At(tod TimeOfDay, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, tod.Hour, tod.Minute, 0, 0, loc)
}

// Before reports whether d is an earlier calendar date than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// MarshalJSON encodes the date as "2006-01-02".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

// UnmarshalJSON decodes "2006-01-02".
func (d *Date) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid date %s", data)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// RecurrencePattern describes an abstract repeat rule. Exactly one of
// DaysOfWeek, DaysOfMonth/NthWeekday, or YearlyDate is semantically active,
// selected by Type and MonthPatternType. The JSON field names are the wire
// contract shared with the task-storage API.
type RecurrencePattern struct {
	Type             PatternType       `json:"type"`
	DaysOfWeek       []int             `json:"daysOfWeek,omitempty"`
	MonthPatternType MonthPatternType  `json:"monthPatternType,omitempty"`
	DaysOfMonth      []int             `json:"daysOfMonth,omitempty"`
	NthWeekday       *NthWeekday       `json:"nthWeekdayOccurrence,omitempty"`
	YearlyDate       *YearlyDate       `json:"yearlyDate,omitempty"`
	TimeOfDay        TimeOfDay         `json:"timeOfDay"`
	TimeZone         string            `json:"timeZone"`
	StartDate        Date              `json:"startDate"`
	EndDate          *Date             `json:"endDate,omitempty"`
}

// Location resolves the pattern's IANA zone.
func (p *RecurrencePattern) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeZone, p.TimeZone)
	}
	return loc, nil
}

// Validate checks structural validity of the pattern. A WEEKLY pattern with
// an empty DaysOfWeek set is structurally valid but incomplete: it expands
// to zero occurrences and is rejected at submission time, not here.
func (p *RecurrencePattern) Validate() error {
	if _, err := NewPatternType(string(p.Type)); err != nil {
		return err
	}
	if _, err := p.Location(); err != nil {
		return err
	}
	if p.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return ErrEndBeforeStart
	}

	switch p.Type {
	case PatternWeekly:
		for _, wd := range p.DaysOfWeek {
			if wd < 0 || wd > 6 {
				return fmt.Errorf("%w: %d", ErrInvalidWeekday, wd)
			}
		}
	case PatternMonthly:
		switch p.MonthPatternType {
		case MonthByDate:
			if len(p.DaysOfMonth) == 0 {
				return fmt.Errorf("%w: no days of month", ErrPatternIncomplete)
			}
			for _, dom := range p.DaysOfMonth {
				if dom != LastDayOfMonth && (dom < 1 || dom > 31) {
					return fmt.Errorf("%w: %d", ErrInvalidMonthDay, dom)
				}
			}
		case MonthByDay:
			if p.NthWeekday == nil {
				return fmt.Errorf("%w: no nth weekday rule", ErrPatternIncomplete)
			}
			if o := p.NthWeekday.Ordinal; o != LastOccurrence && (o < 1 || o > 5) {
				return fmt.Errorf("%w: %d", ErrInvalidOrdinal, o)
			}
			if wd := p.NthWeekday.Weekday; wd < 0 || wd > 6 {
				return fmt.Errorf("%w: %d", ErrInvalidWeekday, wd)
			}
		default:
			return fmt.Errorf("monthly pattern requires BY_DATE or BY_DAY, got %q", p.MonthPatternType)
		}
	case PatternYearly:
		if p.YearlyDate == nil {
			return fmt.Errorf("%w: no yearly date", ErrPatternIncomplete)
		}
		yd := p.YearlyDate
		if yd.Month < time.January || yd.Month > time.December || yd.Day < 1 || yd.Day > 31 {
			return fmt.Errorf("%w: %d-%d", ErrInvalidYearlyDate, yd.Month, yd.Day)
		}
	}

	return nil
}

// Submittable reports whether the pattern can produce at least one
// occurrence in principle. The only structurally valid but incomplete shape
// is WEEKLY with an empty weekday set.
func (p *RecurrencePattern) Submittable() bool {
	if p.Type == PatternWeekly && len(p.DaysOfWeek) == 0 {
		return false
	}
	return true
}

// Clone returns a deep copy of the pattern.
func (p *RecurrencePattern) Clone() *RecurrencePattern {
	if p == nil {
		return nil
	}
	out := *p
	out.DaysOfWeek = slices.Clone(p.DaysOfWeek)
	out.DaysOfMonth = slices.Clone(p.DaysOfMonth)
	if p.NthWeekday != nil {
		nw := *p.NthWeekday
		out.NthWeekday = &nw
	}
	if p.YearlyDate != nil {
		yd := *p.YearlyDate
		out.YearlyDate = &yd
	}
	if p.EndDate != nil {
		ed := *p.EndDate
		out.EndDate = &ed
	}
	return &out
}
