package analytics

import (
	"fmt"
	"time"

	"maplebudget/internal/core"
)

// GroupBy selects the time bucket granularity.
type GroupBy string

const (
	GroupDay   GroupBy = "day"
	GroupWeek  GroupBy = "week"
	GroupMonth GroupBy = "month"
)

// ParseGroupBy defaults to GroupDay.
func ParseGroupBy(s string) GroupBy {
	switch GroupBy(s) {
	case GroupWeek:
		return GroupWeek
	case GroupMonth:
		return GroupMonth
	}
	return GroupDay
}

// Bucket identifies a time bucket. Key sorts lexicographically in time order.
type Bucket struct {
	Key   string
	Label string
}

var frenchShortMonths = [...]string{
	"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juill.", "août", "sept.", "oct.", "nov.", "déc.",
}

func shortMonth(m time.Month) string {
	return frenchShortMonths[m-1]
}

// DayLabel renders "05 janv.".
func DayLabel(d time.Time) string {
	return fmt.Sprintf("%02d %s", d.Day(), shortMonth(d.Month()))
}

// MonthLabel renders "janv. 2024".
func MonthLabel(d time.Time) string {
	return fmt.Sprintf("%s %d", shortMonth(d.Month()), d.Year())
}

// WeekLabel renders the Monday to Sunday span of d's week.
func WeekLabel(d time.Time) string {
	s := StartOfWeek(d)
	return DayLabel(s) + " → " + DayLabel(s.AddDate(0, 0, 6))
}

// StartOfWeek returns the Monday on or before d.
func StartOfWeek(d time.Time) time.Time {
	wd := int(d.Weekday())
	diff := 1 - wd
	if wd == 0 {
		diff = -6
	}
	return time.Date(d.Year(), d.Month(), d.Day()+diff, 0, 0, 0, 0, d.Location())
}

// BucketOf maps a calendar date to its bucket for mode.
func BucketOf(d time.Time, mode GroupBy) Bucket {
	switch mode {
	case GroupWeek:
		s := StartOfWeek(d)
		return Bucket{Key: core.FormatDate(s), Label: WeekLabel(s)}
	case GroupMonth:
		return Bucket{
			Key:   fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month())),
			Label: MonthLabel(d),
		}
	default:
		return Bucket{Key: core.FormatDate(d), Label: DayLabel(d)}
	}
}

// BucketOfDate parses an ISO date at local midnight in loc and buckets it.
// A date that does not parse becomes its own bucket, keyed by the raw text.
func BucketOfDate(date string, mode GroupBy, loc *time.Location) Bucket {
	d, err := core.ParseDate(date, loc)
	if err != nil {
		return Bucket{Key: date, Label: date}
	}
	return BucketOf(d, mode)
}
