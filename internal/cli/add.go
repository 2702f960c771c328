package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hallgrim/dayplan/internal/domain"
	"github.com/hallgrim/dayplan/internal/engine"
)

type addFlags struct {
	priority string
	due      string
	after    string

	every    string
	days     string
	monthDay string
	nth      string
	on       string
	at       string
	zone     string
	from     string
	until    string
}

func newAddCmd(app *App) *cobra.Command {
	flags := &addFlags{}

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task, optionally recurring",
		Example: `  dayplan add "Water plants" --every daily --at 08:00
  dayplan add "Team sync" --every weekly --days mon,thu --at 10:00
  dayplan add "Pay rent" --every monthly --month-day 1
  dayplan add "Retro" --every monthly --nth last:fri
  dayplan add "Tax return" --every yearly --on 04-30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), app)
			if err != nil {
				return err
			}
			defer s.finish()

			draft, anchor, err := buildDraft(s, args[0], flags)
			if err != nil {
				return err
			}

			if _, err := s.rec.CreateItem(cmd.Context(), s.listID, draft, anchor); err != nil {
				return err
			}

			s.rec.Wait()
			return s.printList()
		},
	}

	cmd.Flags().StringVarP(&flags.priority, "priority", "p", "", "Priority: low, medium or high")
	cmd.Flags().StringVar(&flags.due, "due", "", "Due date (2006-01-02)")
	cmd.Flags().StringVar(&flags.after, "after", "", "Insert after this item (position or ID prefix)")
	cmd.Flags().StringVar(&flags.every, "every", "", "Repeat: daily, weekly, monthly or yearly")
	cmd.Flags().StringVar(&flags.days, "days", "", "Weekdays for --every weekly (e.g. mon,wed,fri)")
	cmd.Flags().StringVar(&flags.monthDay, "month-day", "", "Days of month for --every monthly (e.g. 1,15 or last)")
	cmd.Flags().StringVar(&flags.nth, "nth", "", "Nth weekday for --every monthly (e.g. 2:tue or last:fri)")
	cmd.Flags().StringVar(&flags.on, "on", "", "Month and day for --every yearly (e.g. 04-30)")
	cmd.Flags().StringVar(&flags.at, "at", "", "Time of day (HH:MM)")
	cmd.Flags().StringVar(&flags.zone, "zone", "", "IANA time zone for the pattern (default: config or local)")
	cmd.Flags().StringVar(&flags.from, "from", "", "Pattern start date (default: today)")
	cmd.Flags().StringVar(&flags.until, "until", "", "Pattern end date")

	return cmd
}

func buildDraft(s *session, text string, flags *addFlags) (engine.Draft, domain.ItemID, error) {
	draft := engine.Draft{Text: text}
	var anchor domain.ItemID

	if flags.priority != "" {
		p, err := parsePriority(flags.priority)
		if err != nil {
			return draft, anchor, err
		}
		draft.Priority = p
	}

	if flags.after != "" {
		it, err := s.resolveItem(flags.after)
		if err != nil {
			return draft, anchor, err
		}
		anchor = it.ID
	}

	if flags.every == "" {
		if flags.due != "" {
			due, err := parseDueAt(flags.due, flags.at, flags.zone, s.cfg.Timezone)
			if err != nil {
				return draft, anchor, err
			}
			draft.DueAt = &due
		}
		return draft, anchor, nil
	}

	pattern, err := buildPattern(flags, s.cfg.Timezone)
	if err != nil {
		return draft, anchor, err
	}
	draft.Recurring = true
	draft.Recurrence = pattern
	return draft, anchor, nil
}

func buildPattern(flags *addFlags, cfgZone string) (*domain.RecurrencePattern, error) {
	ptype, err := domain.NewPatternType(strings.ToUpper(flags.every))
	if err != nil {
		return nil, err
	}

	zone := flags.zone
	if zone == "" {
		zone = cfgZone
	}
	if zone == "" {
		zone = time.Local.String()
	}

	pattern := &domain.RecurrencePattern{
		Type:      ptype,
		TimeZone:  zone,
		StartDate: domain.DateOf(time.Now()),
	}

	if flags.at != "" {
		tod, err := domain.ParseTimeOfDay(flags.at)
		if err != nil {
			return nil, err
		}
		pattern.TimeOfDay = tod
	}
	if flags.from != "" {
		d, err := domain.ParseDate(flags.from)
		if err != nil {
			return nil, err
		}
		pattern.StartDate = d
	}
	if flags.until != "" {
		d, err := domain.ParseDate(flags.until)
		if err != nil {
			return nil, err
		}
		pattern.EndDate = &d
	}

	switch ptype {
	case domain.PatternWeekly:
		days, err := parseWeekdays(flags.days)
		if err != nil {
			return nil, err
		}
		pattern.DaysOfWeek = days

	case domain.PatternMonthly:
		switch {
		case flags.monthDay != "" && flags.nth != "":
			return nil, fmt.Errorf("--month-day and --nth are mutually exclusive")
		case flags.monthDay != "":
			days, err := parseMonthDays(flags.monthDay)
			if err != nil {
				return nil, err
			}
			pattern.MonthPatternType = domain.MonthByDate
			pattern.DaysOfMonth = days
		case flags.nth != "":
			nth, err := parseNthWeekday(flags.nth)
			if err != nil {
				return nil, err
			}
			pattern.MonthPatternType = domain.MonthByDay
			pattern.NthWeekday = nth
		default:
			return nil, fmt.Errorf("--every monthly requires --month-day or --nth")
		}

	case domain.PatternYearly:
		if flags.on == "" {
			return nil, fmt.Errorf("--every yearly requires --on MM-DD")
		}
		yd, err := parseYearlyDate(flags.on)
		if err != nil {
			return nil, err
		}
		pattern.YearlyDate = yd
	}

	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	return pattern, nil
}

var weekdayNames = map[string]int{
	"sun": 0, "sunday": 0,
	"mon": 1, "monday": 1,
	"tue": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
}

func parseWeekdays(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(part))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		days = append(days, wd)
	}
	return days, nil
}

func parseMonthDays(s string) ([]int, error) {
	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "last" {
			days = append(days, domain.LastDayOfMonth)
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid day of month %q", part)
		}
		days = append(days, n)
	}
	return days, nil
}

func parseNthWeekday(s string) (*domain.NthWeekday, error) {
	ord, day, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("invalid --nth %q, expected e.g. 2:tue or last:fri", s)
	}

	wd, found := weekdayNames[strings.ToLower(strings.TrimSpace(day))]
	if !found {
		return nil, fmt.Errorf("unknown weekday %q", day)
	}

	ordinal := domain.LastOccurrence
	if strings.ToLower(strings.TrimSpace(ord)) != "last" {
		n, err := strconv.Atoi(strings.TrimSpace(ord))
		if err != nil {
			return nil, fmt.Errorf("invalid ordinal %q", ord)
		}
		ordinal = n
	}

	return &domain.NthWeekday{Ordinal: ordinal, Weekday: wd}, nil
}

func parseYearlyDate(s string) (*domain.YearlyDate, error) {
	month, day, ok := strings.Cut(s, "-")
	if !ok {
		return nil, fmt.Errorf("invalid --on %q, expected MM-DD", s)
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return nil, fmt.Errorf("invalid month %q", month)
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return nil, fmt.Errorf("invalid day %q", day)
	}
	return &domain.YearlyDate{Month: time.Month(m), Day: d}, nil
}

func parsePriority(s string) (domain.Priority, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return domain.PriorityNone, nil
	case "low":
		return domain.PriorityLow, nil
	case "medium", "med":
		return domain.PriorityMedium, nil
	case "high":
		return domain.PriorityHigh, nil
	default:
		return domain.PriorityNone, fmt.Errorf("unknown priority %q", s)
	}
}

func parseDueAt(due, at, zone, cfgZone string) (time.Time, error) {
	d, err := domain.ParseDate(due)
	if err != nil {
		return time.Time{}, err
	}

	tod := domain.TimeOfDay{}
	if at != "" {
		tod, err = domain.ParseTimeOfDay(at)
		if err != nil {
			return time.Time{}, err
		}
	}

	loc := time.Local
	if zone == "" {
		zone = cfgZone
	}
	if zone != "" {
		loc, err = time.LoadLocation(zone)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidTimeZone, zone)
		}
	}

	return d.At(tod, loc), nil
}
