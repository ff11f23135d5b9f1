// Package period derives filing periods and statutory due dates from a
// client's cadence configuration. Everything here is pure calendar
// arithmetic: the reference date is the only time input, so the same
// inputs always produce the same period.
package period

import (
	"fmt"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
)

// Period is one filing cycle's date range plus its statutory deadline.
type Period struct {
	Start        time.Time
	End          time.Time
	StatutoryDue time.Time
}

// quarterEndMonths maps each VAT quarter group to the four calendar months
// its quarters end in.
var quarterEndMonths = map[domain.QuarterGroup][4]time.Month{
	domain.QuarterGroup1: {time.January, time.April, time.July, time.October},
	domain.QuarterGroup2: {time.February, time.May, time.August, time.November},
	domain.QuarterGroup3: {time.March, time.June, time.September, time.December},
}

// QuarterEndMonths returns the period-end months for a quarter group.
func QuarterEndMonths(group domain.QuarterGroup) ([4]time.Month, error) {
	months, ok := quarterEndMonths[group]
	if !ok {
		return [4]time.Month{}, fmt.Errorf("unknown quarter group %q", group)
	}
	return months, nil
}

// FilingMonths returns the calendar months in which a quarter group's
// returns are filed: the month after each period end.
func FilingMonths(group domain.QuarterGroup) (map[time.Month]bool, error) {
	ends, err := QuarterEndMonths(group)
	if err != nil {
		return nil, err
	}
	months := make(map[time.Month]bool, 4)
	for _, m := range ends {
		months[nextMonth(m)] = true
	}
	return months, nil
}

// IsFilingMonth reports whether month is one of the group's filing months.
func IsFilingMonth(group domain.QuarterGroup, month time.Month) (bool, error) {
	months, err := FilingMonths(group)
	if err != nil {
		return false, err
	}
	return months[month], nil
}

// ComputeQuarter returns the quarter whose end is the nearest period-end
// month at or after ref. A ref exactly on a quarter boundary (the last day
// of an end month) returns the quarter that just ended; callers wanting
// the next quarter advance ref by one day first.
func ComputeQuarter(group domain.QuarterGroup, ref time.Time) (Period, error) {
	ends, err := QuarterEndMonths(group)
	if err != nil {
		return Period{}, err
	}
	ref = atMidnightUTC(ref)

	// Walk forward month by month until we hit an end month whose last
	// day is on or after ref. At most 3 steps past ref's month.
	year, month := ref.Year(), ref.Month()
	for i := 0; i < 12; i++ {
		if isEndMonth(ends, month) {
			end := lastDayOfMonth(year, month)
			if !end.Before(ref) {
				start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -2, 0)
				return Period{
					Start:        start,
					End:          end,
					StatutoryDue: lastDayOfNextMonth(end),
				}, nil
			}
		}
		year, month = nextYearMonth(year, month)
	}
	return Period{}, fmt.Errorf("no period end found for group %q after %s", group, ref.Format("2006-01-02"))
}

// ComputeAnnual returns the annual period ending at the next occurrence of
// the year-end anchor on or after ref. The start is exactly one year
// before the end, plus one day. The statutory due date is twelve calendar
// months after the period end, with month-end clamping (a 29 Feb period
// end is due 28 Feb the following year, never +365 days).
func ComputeAnnual(anchorMonth time.Month, anchorDay int, ref time.Time) (Period, error) {
	if anchorMonth < time.January || anchorMonth > time.December {
		return Period{}, fmt.Errorf("anchor month %d out of range", anchorMonth)
	}
	if anchorDay < 1 || anchorDay > 31 {
		return Period{}, fmt.Errorf("anchor day %d out of range", anchorDay)
	}
	ref = atMidnightUTC(ref)

	end := anchorInYear(ref.Year(), anchorMonth, anchorDay)
	if end.Before(ref) {
		end = anchorInYear(ref.Year()+1, anchorMonth, anchorDay)
	}
	start := end.AddDate(-1, 0, 0).AddDate(0, 0, 1)
	return Period{
		Start:        start,
		End:          end,
		StatutoryDue: AddMonthsClamped(end, 12),
	}, nil
}

// NextQuarter returns the quarter immediately following the one containing
// ref; used by rollover to spawn the successor period.
func NextQuarter(group domain.QuarterGroup, periodEnd time.Time) (Period, error) {
	return ComputeQuarter(group, atMidnightUTC(periodEnd).AddDate(0, 0, 1))
}

// AddMonthsClamped adds n calendar months, clamping the day to the length
// of the target month. time.AddDate normalizes 29 Feb + 1 year to 1 Mar,
// which is wrong for statutory deadlines.
func AddMonthsClamped(t time.Time, n int) time.Time {
	year, month := t.Year(), t.Month()
	total := int(month) - 1 + n
	year += total / 12
	rem := total % 12
	if rem < 0 {
		// Go's integer division truncates toward zero; renormalize.
		rem += 12
		year--
	}
	month = time.Month(rem + 1)
	day := t.Day()
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func anchorInYear(year int, month time.Month, day int) time.Time {
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isEndMonth(ends [4]time.Month, m time.Month) bool {
	return ends[0] == m || ends[1] == m || ends[2] == m || ends[3] == m
}

func lastDayOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month, daysInMonth(year, month), 0, 0, 0, 0, time.UTC)
}

func lastDayOfNextMonth(t time.Time) time.Time {
	year, month := nextYearMonth(t.Year(), t.Month())
	return lastDayOfMonth(year, month)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func nextMonth(m time.Month) time.Month {
	if m == time.December {
		return time.January
	}
	return m + 1
}

func nextYearMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

func atMidnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
