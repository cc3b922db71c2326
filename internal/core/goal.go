package core

import "strings"

type (
	Goal struct {
		ID            int64  `json:"id"`
		Title         string `json:"title"`
		TargetAmount  Amount `json:"target_amount"`
		CurrentAmount Amount `json:"current_amount"`
		TargetDate    string `json:"target_date"`
	}

	// GoalPlan is computed by the API; it is displayed, never derived here.
	GoalPlan struct {
		GoalID          int64  `json:"goal_id"`
		MonthsRemaining int    `json:"months_remaining"`
		MonthlyRequired Amount `json:"monthly_required"`
		CurrentAmount   Amount `json:"current_amount"`
		TargetAmount    Amount `json:"target_amount"`
		TargetDate      string `json:"target_date"`
	}
)

// GoalProgress returns current/target as a percentage clamped to [0, 100].
func GoalProgress(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	p := current / target * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// GoalTotals sums targets and current amounts over goals.
func GoalTotals(goals []Goal) (targets, current float64) {
	for _, g := range goals {
		targets += g.TargetAmount.Float()
		current += g.CurrentAmount.Float()
	}
	return targets, current
}

// ValidateGoal checks the fields of a goal form.
func ValidateGoal(title string, target, current float64, targetDate string) error {
	var ve ValidationErrors
	if strings.TrimSpace(title) == "" {
		ve.Add("title", ErrEmptyTitle)
	}
	if target <= 0 {
		ve.Add("target_amount", ErrInvalidAmount)
	}
	if current < 0 {
		ve.Add("current_amount", ErrInvalidAmount)
	}
	if err := ValidateDate(targetDate); err != nil {
		ve.Add("target_date", err)
	}
	return ve.Err()
}
