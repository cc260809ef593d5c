package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateSalary_DefaultsConserveSalary(t *testing.T) {
	for _, salary := range []int64{0, 1, 3, 7, 99, 150_000, 333_333, 450_001, 1_000_000} {
		plan := AllocateSalary(salary, nil)
		assert.GreaterOrEqual(t, plan.ToSavings, int64(0))
		diff := plan.Allocated() + plan.ToSavings - salary
		assert.LessOrEqual(t, diff, int64(len(DefaultEnvelopes())), "salary %d", salary)
		assert.GreaterOrEqual(t, diff, int64(0), "salary %d", salary)
	}
}

func TestAllocateSalary_Default(t *testing.T) {
	plan := AllocateSalary(400_000, nil)
	require.Len(t, plan.Envelopes, 5)
	assert.Equal(t, int64(120_000), plan.Envelopes["housing"].Allocated)
	assert.Equal(t, int64(80_000), plan.Envelopes["food"].Allocated)
	assert.Equal(t, int64(10_000), plan.Envelopes["sadaqah"].Allocated)
	assert.Equal(t, Percent, plan.Envelopes["food"].Type)
	assert.Equal(t, int64(110_000), plan.ToSavings)
	assert.Equal(t, int64(400_000), plan.Allocated()+plan.ToSavings)
}

func TestAllocateSalary_FixedAndPercent(t *testing.T) {
	envs := []Envelope{
		{Key: "rent", Title: "Аренда", Type: Fixed, Value: 150_000},
		{Key: "food", Title: "Еда", Type: Percent, Value: 15},
	}
	plan := AllocateSalary(300_000, envs)
	assert.Equal(t, int64(150_000), plan.Envelopes["rent"].Allocated)
	assert.Equal(t, int64(45_000), plan.Envelopes["food"].Allocated)
	assert.Equal(t, int64(105_000), plan.ToSavings)
}

func TestAllocateSalary_OverspendClampsToZero(t *testing.T) {
	envs := []Envelope{{Key: "rent", Title: "Аренда", Type: Fixed, Value: 500_000}}
	plan := AllocateSalary(300_000, envs)
	assert.Equal(t, int64(0), plan.ToSavings)
	assert.Equal(t, int64(500_000), plan.Envelopes["rent"].Allocated)
}

func TestAllocateSalary_UnknownTypeSkipped(t *testing.T) {
	plan := AllocateSalary(100, []Envelope{{Key: "x", Type: "weird", Value: 50}})
	assert.Empty(t, plan.Envelopes)
	assert.Equal(t, int64(100), plan.ToSavings)
}
