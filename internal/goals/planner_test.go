package goals

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaman/internal/core"
)

var now = time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)

func TestPlanGoal(t *testing.T) {
	tests := []struct {
		name        string
		amount      int64
		date        string
		wantMonths  int
		wantMonthly int64
	}{
		{"exactly thirty days", 600_000, now.AddDate(0, 0, 30).Format(core.ISODate), 1, 600_000},
		{"past date", 100_000, "2020-01-01", 1, 100_000},
		{"within thirty days", 90_000, "2026-01-25", 1, 90_000},
		{"one year out", 1_300_000, "2027-01-10", 13, 100_000},
		{"rounds monthly up", 1_000, "2026-04-10", 3, 334},
		{"zero amount", 0, "2027-01-10", 13, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanGoal(tt.amount, tt.date, now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMonths, plan.Months)
			assert.Equal(t, tt.wantMonthly, plan.MonthlyPlan)
		})
	}
}

func TestPlanGoal_TimeOfDay(t *testing.T) {
	noon := now.Add(12 * time.Hour)
	plan, err := PlanGoal(500, noon.AddDate(0, 0, 30).Format(core.ISODate), noon)
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Months)
	assert.Equal(t, int64(500), plan.MonthlyPlan)
}

func TestPlanGoal_Errors(t *testing.T) {
	_, err := PlanGoal(100, "31.12.2026", now)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = PlanGoal(-1, "2027-01-01", now)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestPlan(t *testing.T) {
	plan, err := Plan(core.Goal{Amount: 2_000_000, Months: 12}, now)
	require.NoError(t, err)
	assert.Equal(t, core.GoalPlan{MonthlyPlan: 166_667, Months: 12}, plan)

	// date wins over months
	plan, err = Plan(core.Goal{Amount: 300, Months: 12, DateISO: "2020-01-01"}, now)
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Months)

	_, err = Plan(core.Goal{Amount: 300}, now)
	assert.ErrorIs(t, err, ErrNeedsClarification)

	_, err = PlanMonths(100, 0)
	assert.ErrorIs(t, err, ErrInvalidMonths)
}

func TestPlanGoal_FarFutureDate(t *testing.T) {
	plan, err := PlanGoal(5_000_000, "9999-12-01", now)
	require.NoError(t, err)
	// About 7973 years of 30-day months.
	assert.InDelta(t, 97_000, plan.Months, 500)
	assert.Positive(t, plan.MonthlyPlan)
}

func TestPlan_LargeValuesStayNonNegative(t *testing.T) {
	goals := []core.Goal{
		{Amount: math.MaxInt64, Months: 2},
		{Amount: math.MaxInt64, Months: 1},
		{Amount: math.MaxInt64 - 1, Months: math.MaxInt},
		{Amount: math.MaxInt64, DateISO: "9999-12-31"},
		{Amount: math.MaxInt64, DateISO: "0001-01-01"},
		{Amount: 1, Months: math.MaxInt},
	}
	for _, g := range goals {
		plan, err := Plan(g, now)
		require.NoError(t, err, "%+v", g)
		assert.GreaterOrEqual(t, plan.MonthlyPlan, int64(0), "%+v", g)
		assert.GreaterOrEqual(t, plan.Months, 1, "%+v", g)
		// The plan always reaches the target.
		if plan.MonthlyPlan > 0 && int64(plan.Months) <= math.MaxInt64/plan.MonthlyPlan {
			assert.GreaterOrEqual(t, plan.MonthlyPlan*int64(plan.Months), g.Amount, "%+v", g)
		}
	}

	plan, err := PlanMonths(math.MaxInt64, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64/2+1), plan.MonthlyPlan)
}
