package model

import (
	"fmt"
	"strings"
)

// TimePeriod selects the window for price change, history, and chart queries.
type TimePeriod int

const (
	PeriodHour TimePeriod = iota
	PeriodDay
	PeriodWeek
	PeriodMonth
	PeriodYear
)

var periodNames = map[TimePeriod]string{
	PeriodHour:  "HOUR",
	PeriodDay:   "DAY",
	PeriodWeek:  "WEEK",
	PeriodMonth: "MONTH",
	PeriodYear:  "YEAR",
}

func (p TimePeriod) String() string {
	if name, ok := periodNames[p]; ok {
		return name
	}
	return fmt.Sprintf("TimePeriod(%d)", int(p))
}

func (p TimePeriod) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *TimePeriod) UnmarshalText(text []byte) error {
	parsed, err := ParseTimePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseTimePeriod accepts HOUR, DAY, WEEK, MONTH or YEAR in any case. Empty input is DAY.
func ParseTimePeriod(s string) (TimePeriod, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return PeriodDay, nil
	}
	for p, name := range periodNames {
		if name == s {
			return p, nil
		}
	}
	return PeriodDay, fmt.Errorf("invalid time period: %s", s)
}

// PeriodFromHistoryDuration maps a history duration name onto a TimePeriod. Unknown names
// fall back to DAY.
func PeriodFromHistoryDuration(duration string) TimePeriod {
	p, err := ParseTimePeriod(duration)
	if err != nil {
		return PeriodDay
	}
	return p
}
