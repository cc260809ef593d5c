// Package spending buckets bank transactions into categories and turns the
// result into monthly summaries and advice.
package spending

import (
	"regexp"
	"strings"
)

const (
	CategoryFood          = "еда"
	CategoryTransport     = "транспорт"
	CategoryGroceries     = "продукты"
	CategoryShopping      = "покупки"
	CategoryEntertainment = "развлечения"
	CategoryServices      = "услуги"
	CategoryTransfers     = "переводы"
	CategoryOther         = "прочее"
)

type rule struct {
	category string
	re       *regexp.Regexp
}

// Evaluated in order; the first match wins.
var rules = []rule{
	{CategoryFood, regexp.MustCompile(`кафе|ресторан|кофе|coffee|starbucks|kfc|mcdonald|burger|бургер|пицц|pizza|суши|sushi|glovo|wolt|столов|doner|донер`)},
	{CategoryTransport, regexp.MustCompile(`такси|taxi|yandex go|uber|indrive|автобус|метро|onay|азс|заправк|бензин|helios|sinooil|qazaq ?oil|парков|parking`)},
	{CategoryGroceries, regexp.MustCompile(`magnum|small|galmart|анвар|супермаркет|supermarket|продукт|grocery|рынок|bazar|базар`)},
	{CategoryShopping, regexp.MustCompile(`wildberries|ozon|lamoda|kaspi магазин|kaspi shop|zara|h&m|lc waikiki|mall|молл|тц |shop|магазин|technodom|sulpak|mechta`)},
	{CategoryEntertainment, regexp.MustCompile(`кино|cinema|kinopark|chaplin|netflix|spotify|youtube|театр|концерт|steam|playstation|боулинг|bowling`)},
	{CategoryServices, regexp.MustCompile(`коммунал|связь|beeline|kcell|activ|tele2|altel|интернет|internet|аптек|pharm|клиник|clinic|салон|барбер|barber|страхов`)},
	{CategoryTransfers, regexp.MustCompile(`перевод|transfer|p2p|card to card|с карты на карту`)},
}

// Categorize maps a merchant description to a category. Matching is
// case-insensitive; unknown merchants fall into CategoryOther.
func Categorize(merchant string) string {
	m := strings.ToLower(strings.TrimSpace(merchant))
	if m == "" {
		return CategoryOther
	}
	for _, r := range rules {
		if r.re.MatchString(m) {
			return r.category
		}
	}
	return CategoryOther
}
