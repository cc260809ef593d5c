// Package budget splits a salary into spending envelopes and validates the
// user-edited salary plan.
package budget

import (
	"zaman/internal/core"
)

// EnvelopeType tells how an envelope's Value is interpreted.
type EnvelopeType string

const (
	Fixed   EnvelopeType = "fixed"
	Percent EnvelopeType = "percent"
)

type (
	// Envelope is a named allocation rule. For Fixed, Value is an amount in
	// tenge; for Percent, Value is a percentage of the salary.
	Envelope struct {
		Key   string       `json:"key"`
		Title string       `json:"title"`
		Type  EnvelopeType `json:"type"`
		Value float64      `json:"value"`
	}

	EnvelopeAllocation struct {
		Title     string       `json:"title"`
		Allocated int64        `json:"allocated"`
		Type      EnvelopeType `json:"type"`
	}

	// AllocationPlan maps envelope keys to their allocation. ToSavings is
	// whatever the envelopes leave over and is never negative.
	AllocationPlan struct {
		Envelopes map[string]EnvelopeAllocation `json:"envelopes"`
		ToSavings int64                         `json:"toSavings"`
	}
)

// DefaultEnvelopes returns the stock envelope set. They are all
// percentage-based and leave 27.5% of the salary for savings.
func DefaultEnvelopes() []Envelope {
	return []Envelope{
		{Key: "housing", Title: "Жильё", Type: Percent, Value: 30},
		{Key: "food", Title: "Продукты", Type: Percent, Value: 20},
		{Key: "transport", Title: "Транспорт", Type: Percent, Value: 10},
		{Key: "utilities", Title: "Коммунальные услуги", Type: Percent, Value: 10},
		{Key: "sadaqah", Title: "Садака", Type: Percent, Value: 2.5},
	}
}

// AllocateSalary applies envelopes to salary. A nil slice means
// DefaultEnvelopes. Envelopes that overspend the salary are not an error:
// ToSavings is clamped to zero.
func AllocateSalary(salary int64, envelopes []Envelope) AllocationPlan {
	if envelopes == nil {
		envelopes = DefaultEnvelopes()
	}

	plan := AllocationPlan{Envelopes: make(map[string]EnvelopeAllocation, len(envelopes))}
	var allocated int64
	for _, env := range envelopes {
		var amount int64
		switch env.Type {
		case Fixed:
			amount = core.RoundHalfUp(env.Value)
		case Percent:
			amount = core.RoundHalfUp(float64(salary) * env.Value / 100)
		default:
			continue
		}
		plan.Envelopes[env.Key] = EnvelopeAllocation{Title: env.Title, Allocated: amount, Type: env.Type}
		allocated += amount
	}

	if left := salary - allocated; left > 0 {
		plan.ToSavings = left
	}
	return plan
}

// Allocated sums all envelope allocations.
func (p AllocationPlan) Allocated() int64 {
	var total int64
	for _, e := range p.Envelopes {
		total += e.Allocated
	}
	return total
}
