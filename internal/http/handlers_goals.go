package http

import (
	"errors"
	"net/http"
	"time"

	"zaman/internal/core"
	"zaman/internal/goals"
)

type extractGoalRequest struct {
	Text string `json:"text"`
}

type extractGoalResponse struct {
	Found bool           `json:"found"`
	Goal  *core.Goal     `json:"goal,omitempty"`
	Plan  *core.GoalPlan `json:"plan,omitempty"`
}

// handleExtractGoal parses a free-text goal. When the text carries both an
// amount and a horizon the monthly plan is included.
func (s *Server) handleExtractGoal(w http.ResponseWriter, r *http.Request) {
	var req extractGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	g, ok := goals.Extract(sanitizeInput(req.Text))
	if !ok {
		OK(extractGoalResponse{Found: false}).Write(w)
		return
	}

	resp := extractGoalResponse{Found: true, Goal: &g}
	if g.Amount > 0 && g.HasHorizon() {
		if plan, err := goals.Plan(g, s.now()); err == nil {
			resp.Plan = &plan
		}
	}
	OK(resp).Write(w)
}

type planGoalRequest struct {
	Amount int64 `json:"amount"`
	// TargetAmount is accepted as an alias of Amount.
	TargetAmount int64  `json:"targetAmount,omitempty"`
	Months       int    `json:"months,omitempty"`
	DateISO      string `json:"dateISO,omitempty"`
	TargetDate   string `json:"targetDate,omitempty"`
}

func (req planGoalRequest) goal() core.Goal {
	g := core.Goal{Amount: req.Amount, Months: req.Months, DateISO: req.DateISO}
	if g.Amount == 0 {
		g.Amount = req.TargetAmount
	}
	if g.DateISO == "" {
		g.DateISO = req.TargetDate
	}
	return g
}

// handlePlanGoal computes the monthly contribution for a goal. The target
// date wins over the term when both are given.
func (s *Server) handlePlanGoal(w http.ResponseWriter, r *http.Request) {
	var req planGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	g := req.goal()
	err := g.Validate()
	var plan core.GoalPlan
	if err == nil {
		plan, err = goals.Plan(g, s.now())
	}
	switch {
	case errors.Is(err, goals.ErrNeedsClarification):
		UnprocessableEntityError("Укажите срок накопления: количество месяцев или дату.").Write(w)
		return
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, goals.ErrInvalidAmount):
		UnprocessableEntityError("Сумма цели не может быть отрицательной.").Write(w)
		return
	case errors.Is(err, core.ErrInvalidDate), errors.Is(err, goals.ErrInvalidDate):
		UnprocessableEntityError("Дата цели должна быть в формате ГГГГ-ММ-ДД.").Write(w)
		return
	case errors.Is(err, core.ErrInvalidMonths), errors.Is(err, goals.ErrInvalidMonths):
		UnprocessableEntityError("Срок должен быть не меньше одного месяца.").Write(w)
		return
	case err != nil:
		InternalServerError("internal error").Write(w)
		return
	}

	s.appMetrics.goalsPlanned.Add(1)
	s.track(r, "goal_planned", map[string]any{"amount": g.Amount, "months": plan.Months})
	OK(plan).Write(w)
}

// goalPlan plans an applied goal, which always carries a target date.
func goalPlan(g core.AppliedGoal, now time.Time) (core.GoalPlan, error) {
	return goals.PlanGoal(g.Sum, g.DateISO, now)
}
