// Package recurring turns abstract recurrence patterns into concrete
// occurrence instants. All date arithmetic happens in the pattern's IANA
// zone, so a pattern at 07:00 stays 07:00 wall-clock through DST
// transitions; the absolute instant shifts instead.
package recurring

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/hallgrim/dayplan/internal/domain"
)

// weekdayByIndex maps the wire encoding (0=Sunday..6=Saturday) to rrule
// weekdays.
var weekdayByIndex = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// Engine expands recurrence patterns over a bounded range.
type Engine struct{}

// NewEngine creates a new expansion engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Expand returns every occurrence of the pattern inside
// [rangeStart, rangeEnd], intersected with the pattern's own
// [startDate, endDate] bounds. The sequence is ascending, duplicate-free and
// deterministic: the same inputs always yield the same instants.
//
// A structurally valid but incomplete pattern (WEEKLY with no weekdays
// selected) expands to zero occurrences; that is the caller's signal that
// the configuration is not submittable, not an engine error.
func (e *Engine) Expand(p *domain.RecurrencePattern, rangeStart, rangeEnd time.Time) ([]time.Time, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if rangeEnd.Before(rangeStart) {
		return nil, fmt.Errorf("range end %s is before range start %s", rangeEnd, rangeStart)
	}
	if !p.Submittable() {
		return nil, nil
	}

	loc, err := p.Location()
	if err != nil {
		return nil, err
	}

	opt := rrule.ROption{
		Dtstart: p.StartDate.At(p.TimeOfDay, loc),
	}
	if p.EndDate != nil {
		opt.Until = p.EndDate.At(p.TimeOfDay, loc)
	}

	switch p.Type {
	case domain.PatternDaily:
		opt.Freq = rrule.DAILY

	case domain.PatternWeekly:
		opt.Freq = rrule.WEEKLY
		for _, wd := range p.DaysOfWeek {
			opt.Byweekday = append(opt.Byweekday, weekdayByIndex[wd])
		}

	case domain.PatternMonthly:
		opt.Freq = rrule.MONTHLY
		if p.MonthPatternType == domain.MonthByDate {
			// -1 resolves to the month's last calendar day; a day that
			// does not exist in a given month (31 in February) simply
			// contributes no occurrence that month.
			opt.Bymonthday = append(opt.Bymonthday, p.DaysOfMonth...)
		} else {
			nth := p.NthWeekday
			opt.Byweekday = []rrule.Weekday{weekdayByIndex[nth.Weekday].Nth(nth.Ordinal)}
		}

	case domain.PatternYearly:
		// Feb 29 in a non-leap year produces no occurrence rather than
		// shifting to Mar 1.
		opt.Freq = rrule.YEARLY
		opt.Bymonth = []int{int(p.YearlyDate.Month)}
		opt.Bymonthday = []int{p.YearlyDate.Day}
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence rule: %w", err)
	}

	return rule.Between(rangeStart, rangeEnd, true), nil
}
