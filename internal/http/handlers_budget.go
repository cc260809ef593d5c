package http

import (
	"net/http"

	"zaman/internal/budget"
)

type allocateRequest struct {
	Salary int64 `json:"salary"`
	// Envelopes overrides the default envelope set when present.
	Envelopes []budget.Envelope `json:"envelopes,omitempty"`
}

type allocateResponse struct {
	budget.AllocationPlan
	Allocated int64 `json:"allocated"`
}

func (s *Server) handleAllocateSalary(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if req.Salary <= 0 {
		UnprocessableEntityError("Укажите размер зарплаты").Write(w)
		return
	}

	plan := budget.AllocateSalary(req.Salary, req.Envelopes)
	OK(allocateResponse{AllocationPlan: plan, Allocated: plan.Allocated()}).Write(w)
}

// handleCalculateSalaryPlan previews a salary plan without saving it. An
// inconsistent plan is still a 200: the allocation reports isValid=false
// with the message for the user.
func (s *Server) handleCalculateSalaryPlan(w http.ResponseWriter, r *http.Request) {
	var plan budget.SalaryPlan
	if err := decodeJSON(w, r, &plan); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	s.appMetrics.salaryPlansSeen.Add(1)
	OK(budget.CalculateAllocation(plan)).Write(w)
}
