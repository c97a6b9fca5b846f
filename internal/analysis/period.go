package analysis

import "time"

// Period is the trailing window over which transactions are aggregated.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// DefaultPeriod is used whenever a period value is missing or unrecognized.
// Falling back instead of erroring is deliberate: analysis endpoints should
// degrade to a sensible window rather than reject the request.
const DefaultPeriod = PeriodWeek

// ParsePeriod maps a raw string to a Period, falling back to DefaultPeriod
// for anything it does not recognize.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return Period(s)
	default:
		return DefaultPeriod
	}
}

// Start returns the beginning of the window ending at now. Unrecognized
// periods use the week lookback, matching ParsePeriod's default.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case PeriodDay:
		return now.AddDate(0, 0, -1)
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	case PeriodYear:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -7)
	}
}
