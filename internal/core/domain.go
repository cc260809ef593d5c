package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	// ISODate is the wire format for calendar dates.
	ISODate = "2006-01-02"
)

type (
	// Goal is a savings goal parsed from user text or a tool call.
	// Months and DateISO are both optional; zero means absent.
	Goal struct {
		Amount  int64  `json:"amount"`
		Months  int    `json:"months,omitempty"`
		DateISO string `json:"dateISO,omitempty"`
		Purpose string `json:"purpose,omitempty"`
	}

	// GoalPlan is the monthly contribution needed to reach a goal.
	GoalPlan struct {
		MonthlyPlan int64 `json:"monthlyPlan"`
		Months      int   `json:"months"`
	}

	// AppliedGoal is the persisted per-user goal.
	AppliedGoal struct {
		Sum     int64  `json:"sum"`
		DateISO string `json:"dateISO"`
	}

	// Transaction is a single statement row. Expenses are negative.
	Transaction struct {
		Date     string  `json:"date"`
		Amount   float64 `json:"amount"`
		Merchant string  `json:"merchant,omitempty"`
		Category string  `json:"category,omitempty"`
	}

	MonthSummary struct {
		Total         float64  `json:"total"`
		TopCategories []string `json:"topCategories"`
	}

	SpendingAnalysis struct {
		TotalSpending    float64                 `json:"totalSpending"`
		TotalsByCategory map[string]float64      `json:"totalsByCategory"`
		Monthly          map[string]MonthSummary `json:"monthly"`
		Advices          []string                `json:"advices"`
	}

	// Product is a catalog entry.
	Product struct {
		ID         string   `json:"id"`
		Name       string   `json:"name"`
		Type       string   `json:"type"`
		HalalTags  []string `json:"halalTags"`
		MinAmount  int64    `json:"minAmount"`
		TermMonths int      `json:"termMonths"`
		Link       string   `json:"link,omitempty"`
	}

	// TelemetryEvent is one entry of the telemetry log. T is epoch millis.
	TelemetryEvent struct {
		T       int64           `json:"t"`
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidMonths = errors.New("months cannot be negative")
	ErrEmptyEvent    = errors.New("empty event name")
)

// ParseISODate parses a YYYY-MM-DD date in UTC.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(ISODate, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func (g Goal) Validate() error {
	if g.Amount < 0 {
		return ErrInvalidAmount
	}
	if g.Months < 0 {
		return ErrInvalidMonths
	}
	if g.DateISO != "" {
		if _, err := ParseISODate(g.DateISO); err != nil {
			return err
		}
	}
	return nil
}

// HasHorizon reports whether the goal carries either a term or a target date.
func (g Goal) HasHorizon() bool {
	return g.Months > 0 || g.DateISO != ""
}

func (g AppliedGoal) Validate() error {
	if g.Sum <= 0 {
		return ErrInvalidAmount
	}
	if _, err := ParseISODate(g.DateISO); err != nil {
		return err
	}
	return nil
}

// IsExpense reports whether the row is money going out.
func (t Transaction) IsExpense() bool {
	return t.Amount < 0
}

// Month returns the YYYY-MM bucket of the transaction date.
func (t Transaction) Month() string {
	if len(t.Date) < 7 {
		return t.Date
	}
	return t.Date[:7]
}

func (e TelemetryEvent) Validate() error {
	if strings.TrimSpace(e.Event) == "" {
		return ErrEmptyEvent
	}
	if len(e.Event) > 100 {
		return errors.New("event name too long (max 100 characters)")
	}
	if len(e.Payload) > 0 && !json.Valid(e.Payload) {
		return errors.New("payload is not valid JSON")
	}
	return nil
}

// Time returns the event timestamp.
func (e TelemetryEvent) Time() time.Time {
	return time.UnixMilli(e.T)
}
