package goals

import (
	"errors"
	"math"
	"time"

	"zaman/internal/core"
)

// approxMonth is the planner's month length. It is intentionally not
// calendar-accurate.
const approxMonth = 30 * 24 * time.Hour

var (
	ErrInvalidAmount      = errors.New("goal amount must not be negative")
	ErrInvalidDate        = errors.New("goal date must be YYYY-MM-DD")
	ErrInvalidMonths      = errors.New("goal term must be at least one month")
	ErrNeedsClarification = errors.New("goal has neither a term nor a target date")
)

// PlanGoal computes the monthly contribution that reaches targetAmount by
// targetDateISO. Dates in the past or within 30 days of now give one month.
func PlanGoal(targetAmount int64, targetDateISO string, now time.Time) (core.GoalPlan, error) {
	if targetAmount < 0 {
		return core.GoalPlan{}, ErrInvalidAmount
	}
	target, err := core.ParseISODate(targetDateISO)
	if err != nil {
		return core.GoalPlan{}, ErrInvalidDate
	}
	// time.Duration saturates near 292 years; work in seconds instead.
	secs := float64(target.Unix()-now.Unix()) + float64(target.Nanosecond()-now.Nanosecond())/1e9
	months := int(math.Ceil(secs / approxMonth.Seconds()))
	if months < 1 {
		months = 1
	}
	return core.GoalPlan{MonthlyPlan: ceilDiv(targetAmount, int64(months)), Months: months}, nil
}

// PlanMonths spreads amount evenly over a fixed number of months.
func PlanMonths(amount int64, months int) (core.GoalPlan, error) {
	if amount < 0 {
		return core.GoalPlan{}, ErrInvalidAmount
	}
	if months < 1 {
		return core.GoalPlan{}, ErrInvalidMonths
	}
	return core.GoalPlan{MonthlyPlan: ceilDiv(amount, int64(months)), Months: months}, nil
}

// Plan picks the target date when present, otherwise the term.
func Plan(g core.Goal, now time.Time) (core.GoalPlan, error) {
	switch {
	case g.DateISO != "":
		return PlanGoal(g.Amount, g.DateISO, now)
	case g.Months > 0:
		return PlanMonths(g.Amount, g.Months)
	default:
		return core.GoalPlan{}, ErrNeedsClarification
	}
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}
