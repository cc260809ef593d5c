package budget

import (
	"errors"
	"math"

	"zaman/internal/core"
)

// User-facing validation messages.
const (
	msgSalaryRequired = "Укажите размер зарплаты"
	msgNegativeField  = "Суммы не могут быть отрицательными"
	msgOverBudget     = "Сумма расходов и накоплений превышает зарплату"
)

var ErrInvalidPlan = errors.New("invalid salary plan")

// SalaryPlan is the user-edited monthly budget.
type SalaryPlan struct {
	Salary    int64 `json:"salary"`
	Rent      int64 `json:"rent"`
	Utilities int64 `json:"utilities"`
	Transport int64 `json:"transport"`
	Food      int64 `json:"food"`
	Savings   int64 `json:"savings"`
	Other     int64 `json:"other"`
}

// SalaryAllocation is the result of CalculateAllocation. When IsValid is
// false, Error holds a message for the user and Buffer is zero.
type SalaryAllocation struct {
	TotalExpenses int64              `json:"totalExpenses"`
	Savings       int64              `json:"savings"`
	Buffer        int64              `json:"buffer"`
	Shares        map[string]float64 `json:"shares"`
	IsValid       bool               `json:"isValid"`
	Error         string             `json:"error,omitempty"`
}

func (p SalaryPlan) fields() map[string]int64 {
	return map[string]int64{
		"rent":      p.Rent,
		"utilities": p.Utilities,
		"transport": p.Transport,
		"food":      p.Food,
		"savings":   p.Savings,
		"other":     p.Other,
	}
}

// Validate returns ErrInvalidPlan wrapped around the same checks
// CalculateAllocation reports through IsValid.
func (p SalaryPlan) Validate() error {
	if a := CalculateAllocation(p); !a.IsValid {
		return errors.Join(ErrInvalidPlan, errors.New(a.Error))
	}
	return nil
}

// CalculateAllocation totals the plan's obligations and reports what is
// left as a buffer. Inconsistent input is flagged, never turned into a
// negative buffer.
func CalculateAllocation(p SalaryPlan) SalaryAllocation {
	out := SalaryAllocation{Shares: map[string]float64{}}

	if p.Salary <= 0 {
		out.Error = msgSalaryRequired
		return out
	}

	fields := p.fields()
	for _, v := range fields {
		if v < 0 {
			out.Error = msgNegativeField
			return out
		}
	}

	var (
		obligations int64
		overflow    bool
	)
	for key, v := range fields {
		out.Shares[key] = core.Round2(float64(v) * 100 / float64(p.Salary))
		// The true sum exceeds any salary once it no longer fits.
		if v > math.MaxInt64-obligations {
			obligations, overflow = math.MaxInt64, true
			continue
		}
		obligations += v
	}

	out.TotalExpenses = obligations - p.Savings
	out.Savings = p.Savings

	if overflow || obligations > p.Salary {
		out.Error = msgOverBudget
		return out
	}

	out.Buffer = p.Salary - obligations
	out.IsValid = true
	return out
}
