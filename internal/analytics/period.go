package analytics

import (
	"time"

	"maplebudget/internal/core"
)

// Presets are the quick period buttons, in days.
var Presets = []int{7, 30, 90}

// DefaultPresetDays is the period a dashboard opens with.
const DefaultPresetDays = 30

// Period is an inclusive YYYY-MM-DD range. Either side may be empty.
type Period struct {
	From string
	To   string
}

// IsZero reports whether neither bound is set.
func (p Period) IsZero() bool { return p.From == "" && p.To == "" }

// PresetPeriod returns the last days days ending on today.
func PresetPeriod(today time.Time, days int) Period {
	if days < 1 {
		days = 1
	}
	return Period{
		From: core.FormatDate(today.AddDate(0, 0, -(days - 1))),
		To:   core.FormatDate(today),
	}
}

// DefaultPeriod is PresetPeriod(today, DefaultPresetDays).
func DefaultPeriod(today time.Time) Period {
	return PresetPeriod(today, DefaultPresetDays)
}

// MatchPreset returns the preset length p corresponds to, or 0.
func MatchPreset(p Period, today time.Time) int {
	for _, d := range Presets {
		if PresetPeriod(today, d) == p {
			return d
		}
	}
	return 0
}

// PeriodLabel renders p for the dashboard header.
func PeriodLabel(p Period) string {
	switch {
	case p.From == "" && p.To == "":
		return "Toutes dates"
	case p.To == "":
		return "Depuis " + p.From
	case p.From == "":
		return "Jusqu’au " + p.To
	}
	return p.From + " → " + p.To
}
