package taiko

import (
	"time"

	"github.com/shopspring/decimal"

	"taikodata/internal/model"
	"taikodata/internal/num"
)

// DayPrice is one daily price sample. Day is days since the unix epoch.
type DayPrice struct {
	Day   int64
	Price decimal.Decimal
}

// DaysForPeriod is how many days of day data a price change over p needs.
func DaysForPeriod(p model.TimePeriod) int64 {
	switch p {
	case model.PeriodHour:
		return 1
	case model.PeriodDay:
		return 2
	case model.PeriodWeek:
		return 8
	case model.PeriodMonth:
		return 31
	case model.PeriodYear:
		return 366
	default:
		return 2
	}
}

// DayStartTime is the unix start of the day DaysForPeriod(p) days before now.
func DayStartTime(now time.Time, p model.TimePeriod) int64 {
	start := now.Unix() - DaysForPeriod(p)*secondsPerDay
	return floorDiv(start, secondsPerDay) * secondsPerDay
}

func comparisonDaysBack(p model.TimePeriod) int64 {
	switch p {
	case model.PeriodWeek:
		return 7
	case model.PeriodMonth:
		return 30
	case model.PeriodYear:
		return 365
	default:
		return 1
	}
}

// PriceChange compares the most recent sample with the first sample at least the
// period's look-back earlier, falling back to the oldest sample. points must be ordered
// newest first. ok is false with fewer than two points or a non-positive price.
func PriceChange(points []DayPrice, p model.TimePeriod, now time.Time) (decimal.Decimal, bool) {
	if len(points) < 2 {
		return decimal.Zero, false
	}
	current := points[0].Price
	currentDay := floorDiv(now.Unix(), secondsPerDay)
	threshold := currentDay - comparisonDaysBack(p)

	previous := points[len(points)-1].Price
	for _, point := range points {
		if point.Day <= threshold {
			previous = point.Price
			break
		}
	}

	if current.Sign() <= 0 {
		return decimal.Zero, false
	}
	return num.PercentChange(current, previous)
}

// dayIndex accepts either a day index or a unix timestamp and returns the day index.
// Subgraph deployments disagree on which one the date field holds.
func dayIndex(date int64) int64 {
	if date >= 1_000_000 {
		return floorDiv(date, secondsPerDay)
	}
	return date
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
