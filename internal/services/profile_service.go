package services

import (
	"context"
	"errors"
	"fmt"

	"zaman/internal/budget"
	"zaman/internal/core"
	"zaman/internal/log"
	"zaman/internal/storage"
	"zaman/internal/telemetry"
)

// Store keys for per-user profile state.
const (
	KeySalaryPlan = "zaman_salary_plan"
	KeyGoal       = "zaman_goal"
	KeySettings   = "zaman_settings"
)

// Settings holds the user's feature flags, e.g. "showTips".
type Settings map[string]bool

// ProfileService orchestrates profile reads and writes against the store and
// records the matching telemetry events.
type ProfileService struct {
	store    storage.Store
	recorder *telemetry.Recorder
	logger   *log.Logger
}

// NewProfileService returns a ProfileService. recorder may be nil.
func NewProfileService(store storage.Store, recorder *telemetry.Recorder, logger *log.Logger) *ProfileService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ProfileService{
		store:    store,
		recorder: recorder,
		logger:   logger.WithComponent(log.ComponentProfile),
	}
}

// SalaryPlan returns the saved plan and whether one exists.
func (s *ProfileService) SalaryPlan(ctx context.Context) (budget.SalaryPlan, bool, error) {
	var plan budget.SalaryPlan
	if ok, err := s.get(ctx, KeySalaryPlan, &plan); !ok || err != nil {
		return budget.SalaryPlan{}, false, err
	}
	return plan, true, nil
}

// SaveSalaryPlan stores plan and returns its allocation. Invalid plans are
// not stored; the allocation still carries the user-facing message.
func (s *ProfileService) SaveSalaryPlan(ctx context.Context, plan budget.SalaryPlan) (budget.SalaryAllocation, error) {
	alloc := budget.CalculateAllocation(plan)
	if err := plan.Validate(); err != nil {
		return alloc, err
	}

	if err := storage.SetJSON(ctx, s.store, KeySalaryPlan, plan); err != nil {
		return alloc, fmt.Errorf("save salary plan: %w", err)
	}

	s.track(ctx, "salary_plan_saved", map[string]any{
		"salary": plan.Salary,
		"buffer": alloc.Buffer,
	})
	return alloc, nil
}

// Goal returns the applied goal and whether one exists.
func (s *ProfileService) Goal(ctx context.Context) (core.AppliedGoal, bool, error) {
	var g core.AppliedGoal
	if ok, err := s.get(ctx, KeyGoal, &g); !ok || err != nil {
		return core.AppliedGoal{}, false, err
	}
	return g, true, nil
}

// ApplyGoal validates and stores g as the user's current goal.
func (s *ProfileService) ApplyGoal(ctx context.Context, g core.AppliedGoal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if err := storage.SetJSON(ctx, s.store, KeyGoal, g); err != nil {
		return fmt.Errorf("save goal: %w", err)
	}

	s.track(ctx, "goal_applied", g)
	return nil
}

// Settings returns the stored flags. Missing settings are an empty map.
func (s *ProfileService) Settings(ctx context.Context) (Settings, error) {
	out := Settings{}
	if _, err := s.get(ctx, KeySettings, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = Settings{}
	}
	return out, nil
}

// UpdateSettings merges patch into the stored flags and returns the result.
// Read-modify-write without a transaction; the last writer wins.
func (s *ProfileService) UpdateSettings(ctx context.Context, patch Settings) (Settings, error) {
	current, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		current[k] = v
	}
	if err := storage.SetJSON(ctx, s.store, KeySettings, current); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	return current, nil
}

func (s *ProfileService) get(ctx context.Context, key string, v any) (bool, error) {
	err := storage.GetJSON(ctx, s.store, key, v)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Failed to read profile value", log.FieldKey, key, log.FieldError, err)
		return false, err
	}
	return true, nil
}

func (s *ProfileService) track(ctx context.Context, event string, payload any) {
	if s.recorder == nil {
		return
	}
	if _, err := s.recorder.Track(ctx, event, payload); err != nil {
		// The profile write already succeeded.
		s.logger.WarnContext(ctx, "Failed to record telemetry", log.FieldEvent, event, log.FieldError, err)
	}
}
