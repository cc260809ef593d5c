package spending

import (
	"sort"
	"strings"

	"zaman/internal/core"
)

// Share thresholds, as fractions of total spending, above which advice is
// given.
const (
	FoodThreshold      = 0.30
	TransportThreshold = 0.15
	ShoppingThreshold  = 0.20
)

const (
	AdviceFood      = "Расходы на еду превышают 30% бюджета. Попробуйте чаще готовить дома и планировать покупки заранее."
	AdviceTransport = "Транспорт занимает более 15% расходов. Рассмотрите общественный транспорт или совместные поездки."
	AdviceShopping  = "Покупки превышают 20% расходов. Установите месячный лимит и избегайте импульсивных трат."
	AdviceBalanced  = "Ваши расходы хорошо сбалансированы. Продолжайте в том же духе и направляйте излишки в сбережения!"
)

const topCategoriesPerMonth = 2

// Analyze summarizes expenses (negative amounts) by category and by month.
// When hasCategoryColumn is set, a transaction's own non-empty category is
// used verbatim; otherwise the merchant is categorized.
func Analyze(txs []core.Transaction, hasCategoryColumn bool) core.SpendingAnalysis {
	totals := map[string]float64{}
	monthly := map[string]map[string]float64{}
	var total float64

	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		amount := -tx.Amount
		category := resolveCategory(tx, hasCategoryColumn)

		totals[category] += amount
		total += amount

		month := tx.Month()
		if monthly[month] == nil {
			monthly[month] = map[string]float64{}
		}
		monthly[month][category] += amount
	}

	out := core.SpendingAnalysis{
		TotalSpending:    core.Round2(total),
		TotalsByCategory: make(map[string]float64, len(totals)),
		Monthly:          make(map[string]core.MonthSummary, len(monthly)),
		Advices:          advise(totals, total),
	}
	for cat, v := range totals {
		out.TotalsByCategory[cat] = core.Round2(v)
	}
	for month, byCat := range monthly {
		var sum float64
		for _, v := range byCat {
			sum += v
		}
		out.Monthly[month] = core.MonthSummary{
			Total:         core.Round2(sum),
			TopCategories: topCategories(byCat, topCategoriesPerMonth),
		}
	}
	return out
}

func resolveCategory(tx core.Transaction, hasCategoryColumn bool) string {
	if hasCategoryColumn {
		if c := strings.TrimSpace(tx.Category); c != "" {
			return c
		}
	}
	return Categorize(tx.Merchant)
}

// topCategories returns up to n category names ordered by total descending,
// ties broken by name.
func topCategories(byCat map[string]float64, n int) []string {
	names := make([]string, 0, len(byCat))
	for c := range byCat {
		names = append(names, c)
	}
	sort.Slice(names, func(i, j int) bool {
		if byCat[names[i]] != byCat[names[j]] {
			return byCat[names[i]] > byCat[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

func advise(totals map[string]float64, total float64) []string {
	advices := []string{}
	if total <= 0 {
		return advices
	}
	if totals[CategoryFood]/total > FoodThreshold {
		advices = append(advices, AdviceFood)
	}
	if totals[CategoryTransport]/total > TransportThreshold {
		advices = append(advices, AdviceTransport)
	}
	if totals[CategoryShopping]/total > ShoppingThreshold {
		advices = append(advices, AdviceShopping)
	}
	if len(advices) == 0 {
		advices = append(advices, AdviceBalanced)
	}
	return advices
}
