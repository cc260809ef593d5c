package assistant

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"zaman/internal/catalog"
	"zaman/internal/core"
)

// Tool names the model may emit.
const (
	ToolMatchProduct = "match_product"
	ToolSetGoal      = "set_goal"
	ToolPlanGoal     = "plan_goal"
)

// ToolCall is one of MatchProduct or PlanGoal.
type ToolCall interface {
	ToolName() string
	isToolCall()
}

// MatchProduct asks for catalog products.
type MatchProduct struct {
	Type      string          `json:"type"`
	MinAmount int64           `json:"minAmount"`
	Query     string          `json:"query"`
	UI        json.RawMessage `json:"ui,omitempty"`
}

func (MatchProduct) ToolName() string { return ToolMatchProduct }
func (MatchProduct) isToolCall()      {}

func (m MatchProduct) Filter() catalog.Filter {
	return catalog.Filter{Type: m.Type, MinAmount: m.MinAmount, Query: m.Query}
}

// PlanGoal asks for a monthly savings plan. Tool is set_goal or plan_goal.
type PlanGoal struct {
	Tool       string `json:"tool"`
	Amount     int64  `json:"amount"`
	Months     int    `json:"months,omitempty"`
	TargetDate string `json:"targetDate,omitempty"`
	Purpose    string `json:"purpose,omitempty"`
}

func (p PlanGoal) ToolName() string { return p.Tool }
func (PlanGoal) isToolCall()        {}

// Goal converts the call to the planner's input.
func (p PlanGoal) Goal() core.Goal {
	return core.Goal{Amount: p.Amount, Months: p.Months, DateISO: p.TargetDate, Purpose: p.Purpose}
}

type rawToolCall struct {
	Tool         string          `json:"tool"`
	Type         string          `json:"type"`
	MinAmount    *float64        `json:"minAmount"`
	Query        string          `json:"query"`
	UI           json.RawMessage `json:"ui"`
	Amount       *float64        `json:"amount"`
	TargetAmount *float64        `json:"targetAmount"`
	Months       *float64        `json:"months"`
	TargetDate   string          `json:"targetDate"`
	Purpose      string          `json:"purpose"`
}

var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// stripFences removes a markdown code fence wrapped around the whole reply.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// ParseToolCall decodes reply as a tool call. It reports false when the
// reply is plain text, malformed, names an unknown tool or fails
// validation; the caller then shows the reply as is.
func ParseToolCall(reply string) (ToolCall, bool) {
	body := stripFences(reply)
	if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
		return nil, false
	}

	var raw rawToolCall
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, false
	}

	switch strings.TrimSpace(raw.Tool) {
	case ToolMatchProduct:
		return raw.matchProduct()
	case ToolSetGoal, ToolPlanGoal:
		return raw.planGoal()
	default:
		return nil, false
	}
}

func (r rawToolCall) matchProduct() (ToolCall, bool) {
	call := MatchProduct{
		Type:  strings.TrimSpace(r.Type),
		Query: strings.TrimSpace(r.Query),
		UI:    r.UI,
	}
	if call.Type == "" && call.Query == "" {
		return nil, false
	}
	if r.MinAmount != nil {
		if *r.MinAmount < 0 || !fitsInt64(*r.MinAmount) {
			return nil, false
		}
		call.MinAmount = int64(math.Round(*r.MinAmount))
	}
	return call, true
}

func (r rawToolCall) planGoal() (ToolCall, bool) {
	amount := r.Amount
	if amount == nil {
		amount = r.TargetAmount
	}
	if amount == nil || *amount <= 0 || !fitsInt64(math.Ceil(*amount)) {
		return nil, false
	}

	call := PlanGoal{
		Tool:    strings.TrimSpace(r.Tool),
		Amount:  int64(math.Ceil(*amount)),
		Purpose: strings.TrimSpace(r.Purpose),
	}
	if r.Months != nil {
		if *r.Months < 0 || !fitsInt64(math.Round(*r.Months)) {
			return nil, false
		}
		call.Months = int(math.Round(*r.Months))
	}
	if d := strings.TrimSpace(r.TargetDate); d != "" {
		if _, err := core.ParseISODate(d); err != nil {
			return nil, false
		}
		call.TargetDate = d
	}
	return call, true
}

// fitsInt64 reports whether f converts to int64 without overflow. The
// upper bound is exclusive because float64(math.MaxInt64) is 2^63.
func fitsInt64(f float64) bool {
	return !math.IsNaN(f) && f >= math.MinInt64 && f < math.MaxInt64
}
