package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaman/internal/budget"
	"zaman/internal/core"
	"zaman/internal/invest"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := &cli{
		now:  func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) },
		rand: fixedRand(0.5),
	}
	root := newRootCmdWith(c)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGoalCommand(t *testing.T) {
	out, err := run(t, "--json", "goal", "накопить 2 млн за 12 месяцев")
	require.NoError(t, err)

	var got struct {
		Found bool          `json:"found"`
		Goal  core.Goal     `json:"goal"`
		Plan  core.GoalPlan `json:"plan"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Found)
	assert.Equal(t, int64(2_000_000), got.Goal.Amount)
	assert.Equal(t, 12, got.Goal.Months)
	assert.Equal(t, core.GoalPlan{MonthlyPlan: 166667, Months: 12}, got.Plan)

	out, err = run(t, "goal", "просто хочу копить")
	require.NoError(t, err)
	assert.Contains(t, out, "No goal found.")
}

func TestPlanCommand(t *testing.T) {
	out, err := run(t, "plan", "1_300_000", "--date", "2026-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Save 100 000 ₸ per month for 13 months")

	_, err = run(t, "plan", "1000")
	assert.EqualError(t, err, "either --months or --date is required")

	_, err = run(t, "plan", "abc", "--months", "3")
	assert.Error(t, err)
}

func TestAllocateCommand(t *testing.T) {
	out, err := run(t, "--json", "allocate", "100000")
	require.NoError(t, err)

	var plan budget.AllocationPlan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, int64(27500), plan.ToSavings)
	assert.Equal(t, int64(30000), plan.Envelopes["housing"].Allocated)

	_, err = run(t, "allocate", "0")
	assert.Error(t, err)
}

func TestAllocateCommand_CustomEnvelopes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "envelopes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"key":"rent","title":"Аренда","type":"fixed","value":40000}]`), 0o600))

	out, err := run(t, "--json", "allocate", "100000", "--envelopes", path)
	require.NoError(t, err)

	var plan budget.AllocationPlan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, int64(60000), plan.ToSavings)
}

func TestInvestCommand(t *testing.T) {
	out, err := run(t, "--json", "invest", "100000", "--instrument", "sukuk")
	require.NoError(t, err)

	var res invest.InvestResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, int64(100), res.WakalaFee)
	assert.Equal(t, int64(7992), res.Return)
	assert.Equal(t, int64(107892), res.Projected)

	_, err = run(t, "invest", "100000", "--instrument", "bonds")
	assert.ErrorIs(t, err, invest.ErrUnknownInstrument)
}

func TestAnalyzeCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.csv")
	csv := "date,amount,category\n" +
		"2025-01-05,-1000,food\n" +
		"2025-01-06,-500,transport\n" +
		"2025-01-10,250000,salary\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	out, err := run(t, "--json", "analyze", path)
	require.NoError(t, err)

	var analysis core.SpendingAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &analysis))
	assert.Equal(t, 1500.0, analysis.TotalSpending)
	assert.Equal(t, 1000.0, analysis.TotalsByCategory["food"])

	_, err = run(t, "analyze", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
