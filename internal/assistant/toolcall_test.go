package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolCall_MatchProduct(t *testing.T) {
	call, ok := ParseToolCall(`{"tool":"match_product","type":"deposit","minAmount":100000,"query":"вакала","ui":{"cta":"open"}}`)
	require.True(t, ok)

	m, isMatch := call.(MatchProduct)
	require.True(t, isMatch)
	assert.Equal(t, "deposit", m.Type)
	assert.Equal(t, int64(100_000), m.MinAmount)
	assert.Equal(t, "вакала", m.Query)
	assert.JSONEq(t, `{"cta":"open"}`, string(m.UI))
	assert.Equal(t, ToolMatchProduct, m.ToolName())
}

func TestParseToolCall_PlanGoal(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  PlanGoal
	}{
		{
			name:  "plan_goal with targetAmount and date",
			reply: `{"tool":"plan_goal","targetAmount":2000000,"targetDate":"2027-01-01","purpose":"машина"}`,
			want:  PlanGoal{Tool: ToolPlanGoal, Amount: 2_000_000, TargetDate: "2027-01-01", Purpose: "машина"},
		},
		{
			name:  "set_goal with amount and months",
			reply: `{"tool":"set_goal","amount":500000,"months":10}`,
			want:  PlanGoal{Tool: ToolSetGoal, Amount: 500_000, Months: 10},
		},
		{
			name:  "fenced json",
			reply: "```json\n{\"tool\":\"plan_goal\",\"amount\":1000}\n```",
			want:  PlanGoal{Tool: ToolPlanGoal, Amount: 1000},
		},
		{
			name:  "large amount still fits",
			reply: `{"tool":"plan_goal","amount":9e18,"months":1e15}`,
			want:  PlanGoal{Tool: ToolPlanGoal, Amount: 9_000_000_000_000_000_000, Months: 1_000_000_000_000_000},
		},
		{
			name:  "amount wins over targetAmount",
			reply: `{"tool":"plan_goal","amount":10,"targetAmount":20,"months":1}`,
			want:  PlanGoal{Tool: ToolPlanGoal, Amount: 10, Months: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, ok := ParseToolCall(tt.reply)
			require.True(t, ok)
			assert.Equal(t, tt.want, call)
		})
	}
}

func TestParseToolCall_FallsBackToText(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"plain text", "Здравствуйте! Чем могу помочь?"},
		{"malformed json", `{"tool":"match_product","type":`},
		{"unknown tool", `{"tool":"transfer_money","amount":100}`},
		{"missing tool", `{"type":"deposit"}`},
		{"match without type or query", `{"tool":"match_product","minAmount":100}`},
		{"negative min amount", `{"tool":"match_product","type":"deposit","minAmount":-1}`},
		{"goal without amount", `{"tool":"set_goal","months":12}`},
		{"goal with zero amount", `{"tool":"plan_goal","amount":0}`},
		{"goal with bad date", `{"tool":"plan_goal","amount":10,"targetDate":"завтра"}`},
		{"goal with negative months", `{"tool":"plan_goal","amount":10,"months":-3}`},
		{"goal amount beyond int64", `{"tool":"plan_goal","amount":1e20,"months":12}`},
		{"goal amount at 2^63", `{"tool":"plan_goal","amount":9223372036854775808}`},
		{"goal months beyond int64", `{"tool":"plan_goal","amount":10,"months":1e30}`},
		{"min amount beyond int64", `{"tool":"match_product","type":"deposit","minAmount":1e19}`},
		{"text around json", `Вот план: {"tool":"plan_goal","amount":10}`},
		{"json array", `[{"tool":"plan_goal","amount":10}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, ok := ParseToolCall(tt.reply)
			assert.False(t, ok)
			assert.Nil(t, call)
		})
	}
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripFences("  {\"a\":1}  "))
}

func TestParseToolCall_NumbersNeverNegative(t *testing.T) {
	replies := []string{
		`{"tool":"plan_goal","amount":1e20,"months":1e30}`,
		`{"tool":"plan_goal","amount":9.2233720368547e18,"months":9.2233720368547e18}`,
		`{"tool":"set_goal","targetAmount":0.2,"months":0.4}`,
		`{"tool":"match_product","query":"x","minAmount":9.2233720368547e18}`,
		`{"tool":"match_product","query":"x","minAmount":1e300}`,
	}
	for _, reply := range replies {
		call, ok := ParseToolCall(reply)
		if !ok {
			continue
		}
		switch c := call.(type) {
		case PlanGoal:
			assert.Positive(t, c.Amount, reply)
			assert.GreaterOrEqual(t, c.Months, 0, reply)
		case MatchProduct:
			assert.GreaterOrEqual(t, c.MinAmount, int64(0), reply)
		}
	}
}
