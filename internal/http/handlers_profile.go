package http

import (
	"errors"
	"net/http"

	"zaman/internal/budget"
	"zaman/internal/core"
	"zaman/internal/log"
	"zaman/internal/services"
)

const msgStorageUnavailable = "Не удалось сохранить данные. Попробуйте позже."

type salaryPlanResponse struct {
	Exists     bool                     `json:"exists"`
	Plan       *budget.SalaryPlan       `json:"plan,omitempty"`
	Allocation *budget.SalaryAllocation `json:"allocation,omitempty"`
}

func (s *Server) handleGetSalaryPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plan, ok, err := s.deps.Profile.SalaryPlan(ctx)
	if err != nil {
		s.storageError(w, r, "read salary plan", err)
		return
	}
	if !ok {
		OK(salaryPlanResponse{Exists: false}).Write(w)
		return
	}
	alloc := budget.CalculateAllocation(plan)
	OK(salaryPlanResponse{Exists: true, Plan: &plan, Allocation: &alloc}).Write(w)
}

func (s *Server) handlePutSalaryPlan(w http.ResponseWriter, r *http.Request) {
	var plan budget.SalaryPlan
	if err := decodeJSON(w, r, &plan); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	s.appMetrics.salaryPlansSeen.Add(1)
	alloc, err := s.deps.Profile.SaveSalaryPlan(r.Context(), plan)
	switch {
	case errors.Is(err, budget.ErrInvalidPlan):
		NewJSONResponse().
			Status(http.StatusUnprocessableEntity).
			Body(ErrorBody{Error: "validation_failed", Message: alloc.Error, Details: alloc}).
			Write(w)
		return
	case err != nil:
		s.storageError(w, r, "save salary plan", err)
		return
	}
	OK(salaryPlanResponse{Exists: true, Plan: &plan, Allocation: &alloc}).Write(w)
}

type goalResponse struct {
	Exists bool              `json:"exists"`
	Goal   *core.AppliedGoal `json:"goal,omitempty"`
	Plan   *core.GoalPlan    `json:"plan,omitempty"`
}

// handleGetGoal returns the applied goal with its monthly plan as of now.
func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	g, ok, err := s.deps.Profile.Goal(r.Context())
	if err != nil {
		s.storageError(w, r, "read goal", err)
		return
	}
	if !ok {
		OK(goalResponse{Exists: false}).Write(w)
		return
	}
	OK(s.goalResponse(g)).Write(w)
}

func (s *Server) handlePutGoal(w http.ResponseWriter, r *http.Request) {
	var g core.AppliedGoal
	if err := decodeJSON(w, r, &g); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	err := s.deps.Profile.ApplyGoal(r.Context(), g)
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		UnprocessableEntityError("Сумма цели должна быть больше нуля.").Write(w)
		return
	case errors.Is(err, core.ErrInvalidDate):
		UnprocessableEntityError("Дата цели должна быть в формате ГГГГ-ММ-ДД.").Write(w)
		return
	case err != nil:
		s.storageError(w, r, "save goal", err)
		return
	}
	OK(s.goalResponse(g)).Write(w)
}

func (s *Server) goalResponse(g core.AppliedGoal) goalResponse {
	resp := goalResponse{Exists: true, Goal: &g}
	if plan, err := goalPlan(g, s.now()); err == nil {
		resp.Plan = &plan
	}
	return resp
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.deps.Profile.Settings(r.Context())
	if err != nil {
		s.storageError(w, r, "read settings", err)
		return
	}
	OK(settings).Write(w)
}

// handlePutSettings merges the posted flags into the stored ones.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var patch services.Settings
	if err := decodeJSON(w, r, &patch); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	settings, err := s.deps.Profile.UpdateSettings(r.Context(), patch)
	if err != nil {
		s.storageError(w, r, "update settings", err)
		return
	}
	OK(settings).Write(w)
}

func (s *Server) storageError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	log.NewStructuredLogger(log.FromContext(ctx)).
		LogError(ctx, "Profile storage failed", err, log.ComponentProfile, op, nil)
	captureError(r, err)
	ErrorResponse(http.StatusServiceUnavailable, "storage_unavailable", msgStorageUnavailable).Write(w)
}
