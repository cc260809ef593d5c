package spending

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaman/internal/core"
)

func TestAnalyze_IgnoresIncome(t *testing.T) {
	txs := []core.Transaction{
		{Date: "2025-01-05", Amount: 500_000, Merchant: "Зарплата"},
		{Date: "2025-01-20", Amount: 0, Merchant: "Kinopark"},
	}
	got := Analyze(txs, false)
	assert.Empty(t, got.TotalsByCategory)
	assert.Empty(t, got.Monthly)
	assert.Empty(t, got.Advices)
	assert.NotNil(t, got.Advices)
	assert.Equal(t, 0.0, got.TotalSpending)
}

func TestAnalyze_TotalsAndMonthly(t *testing.T) {
	txs := []core.Transaction{
		{Date: "2025-01-03", Amount: -10_000, Merchant: "Starbucks"},
		{Date: "2025-01-04", Amount: -5_000, Merchant: "Yandex Go"},
		{Date: "2025-01-09", Amount: -20_000, Merchant: "Magnum"},
		{Date: "2025-02-01", Amount: -3_000, Merchant: "Netflix"},
		{Date: "2025-02-10", Amount: -7_500.5, Merchant: "Magnum"},
		{Date: "2025-02-11", Amount: 100_000, Merchant: "Зарплата"},
	}
	got := Analyze(txs, false)

	assert.Equal(t, 45_500.5, got.TotalSpending)
	assert.Equal(t, 27_500.5, got.TotalsByCategory[CategoryGroceries])
	assert.Equal(t, 10_000.0, got.TotalsByCategory[CategoryFood])
	assert.Len(t, got.TotalsByCategory, 4)

	require.Contains(t, got.Monthly, "2025-01")
	assert.Equal(t, 35_000.0, got.Monthly["2025-01"].Total)
	assert.Equal(t, []string{CategoryGroceries, CategoryFood}, got.Monthly["2025-01"].TopCategories)
	assert.Equal(t, []string{CategoryGroceries, CategoryEntertainment}, got.Monthly["2025-02"].TopCategories)
}

func TestAnalyze_CategoryColumn(t *testing.T) {
	txs := []core.Transaction{
		{Date: "2025-03-01", Amount: -100, Merchant: "Starbucks", Category: "подарки"},
		{Date: "2025-03-02", Amount: -100, Merchant: "Starbucks"},
	}

	withColumn := Analyze(txs, true)
	assert.Equal(t, 100.0, withColumn.TotalsByCategory["подарки"])
	assert.Equal(t, 100.0, withColumn.TotalsByCategory[CategoryFood])

	without := Analyze(txs, false)
	assert.Equal(t, 200.0, without.TotalsByCategory[CategoryFood])
	assert.NotContains(t, without.TotalsByCategory, "подарки")
}

func TestAnalyze_TopCategoriesTieBreak(t *testing.T) {
	txs := []core.Transaction{
		{Date: "2025-04-01", Amount: -50, Category: "б"},
		{Date: "2025-04-01", Amount: -50, Category: "а"},
		{Date: "2025-04-01", Amount: -50, Category: "в"},
	}
	got := Analyze(txs, true)
	assert.Equal(t, []string{"а", "б"}, got.Monthly["2025-04"].TopCategories)
}

func TestAnalyze_Advice(t *testing.T) {
	tests := []struct {
		name string
		txs  []core.Transaction
		want []string
	}{
		{
			name: "food heavy",
			txs: []core.Transaction{
				{Date: "2025-01-01", Amount: -40, Category: CategoryFood},
				{Date: "2025-01-01", Amount: -60, Category: CategoryServices},
			},
			want: []string{AdviceFood},
		},
		{
			name: "transport and shopping",
			txs: []core.Transaction{
				{Date: "2025-01-01", Amount: -20, Category: CategoryTransport},
				{Date: "2025-01-01", Amount: -25, Category: CategoryShopping},
				{Date: "2025-01-01", Amount: -55, Category: CategoryServices},
			},
			want: []string{AdviceTransport, AdviceShopping},
		},
		{
			name: "exactly at thresholds",
			txs: []core.Transaction{
				{Date: "2025-01-01", Amount: -30, Category: CategoryFood},
				{Date: "2025-01-01", Amount: -15, Category: CategoryTransport},
				{Date: "2025-01-01", Amount: -20, Category: CategoryShopping},
				{Date: "2025-01-01", Amount: -35, Category: CategoryServices},
			},
			want: []string{AdviceBalanced},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Analyze(tt.txs, true).Advices)
		})
	}
}
