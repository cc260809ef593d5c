package budget

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateAllocation(t *testing.T) {
	tests := []struct {
		name       string
		plan       SalaryPlan
		wantValid  bool
		wantBuffer int64
		wantErr    string
	}{
		{
			name:       "consistent plan leaves buffer",
			plan:       SalaryPlan{Salary: 500_000, Rent: 150_000, Utilities: 30_000, Transport: 20_000, Food: 100_000, Savings: 100_000, Other: 50_000},
			wantValid:  true,
			wantBuffer: 50_000,
		},
		{
			name:       "exactly balanced",
			plan:       SalaryPlan{Salary: 100, Rent: 60, Savings: 40},
			wantValid:  true,
			wantBuffer: 0,
		},
		{
			name:    "over budget",
			plan:    SalaryPlan{Salary: 200_000, Rent: 150_000, Food: 80_000},
			wantErr: msgOverBudget,
		},
		{
			name:    "field larger than any salary",
			plan:    SalaryPlan{Salary: 100, Rent: math.MaxInt64, Food: 10},
			wantErr: msgOverBudget,
		},
		{
			name:    "fields that only overflow together",
			plan:    SalaryPlan{Salary: math.MaxInt64, Rent: math.MaxInt64 / 2, Food: math.MaxInt64 / 2, Other: 2},
			wantErr: msgOverBudget,
		},
		{
			name:       "salary at the upper bound",
			plan:       SalaryPlan{Salary: math.MaxInt64, Rent: math.MaxInt64 - 1},
			wantValid:  true,
			wantBuffer: 1,
		},
		{
			name:    "missing salary",
			plan:    SalaryPlan{Rent: 10},
			wantErr: msgSalaryRequired,
		},
		{
			name:    "negative field",
			plan:    SalaryPlan{Salary: 100, Food: -1},
			wantErr: msgNegativeField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateAllocation(tt.plan)
			assert.Equal(t, tt.wantValid, got.IsValid)
			assert.Equal(t, tt.wantBuffer, got.Buffer)
			assert.Equal(t, tt.wantErr, got.Error)
			assert.GreaterOrEqual(t, got.Buffer, int64(0))
		})
	}
}

func TestCalculateAllocation_Shares(t *testing.T) {
	got := CalculateAllocation(SalaryPlan{Salary: 300_000, Rent: 100_000, Savings: 30_000})
	assert.True(t, got.IsValid)
	assert.Equal(t, 33.33, got.Shares["rent"])
	assert.Equal(t, 10.0, got.Shares["savings"])
	assert.Equal(t, int64(100_000), got.TotalExpenses)
	assert.Equal(t, int64(30_000), got.Savings)
	assert.Equal(t, int64(170_000), got.Buffer)
}

func TestSalaryPlanValidate(t *testing.T) {
	assert.NoError(t, SalaryPlan{Salary: 10, Food: 5}.Validate())
	err := SalaryPlan{Salary: 10, Food: 50}.Validate()
	assert.ErrorIs(t, err, ErrInvalidPlan)
	assert.Contains(t, err.Error(), msgOverBudget)
}

func TestCalculateAllocation_BufferNeverNegative(t *testing.T) {
	values := []int64{0, 1, 100, 1_000_000, math.MaxInt64 / 3, math.MaxInt64 - 1, math.MaxInt64}
	for _, salary := range values[1:] {
		for _, a := range values {
			for _, b := range values {
				plan := SalaryPlan{Salary: salary, Rent: a, Food: b, Savings: a}
				got := CalculateAllocation(plan)
				assert.GreaterOrEqual(t, got.Buffer, int64(0), "%+v", plan)
				assert.GreaterOrEqual(t, got.TotalExpenses, int64(0), "%+v", plan)
				if got.IsValid {
					assert.LessOrEqual(t, got.Buffer, salary, "%+v", plan)
					assert.NoError(t, plan.Validate())
				} else {
					assert.ErrorIs(t, plan.Validate(), ErrInvalidPlan)
				}
			}
		}
	}
}
