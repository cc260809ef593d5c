package assistant

import (
	"fmt"
	"strings"

	"zaman/internal/core"
)

// SystemPrompt instructs the model about the bank and the tool protocol.
const SystemPrompt = `Ты — ассистент Zaman Bank, исламского банка. Помогаешь клиентам подобрать халяльные продукты и спланировать накопления.

Правила:
- Отвечай кратко и по-русски.
- Не предлагай продукты с процентами (риба). Используй термины мурабаха, вакала, сукук.
- Если клиент хочет подобрать продукт, ответь ТОЛЬКО JSON без пояснений:
  {"tool":"match_product","type":"deposit|savings|financing|investment|card","minAmount":число,"query":"ключевые слова"}
- Если клиент называет цель накопления, ответь ТОЛЬКО JSON:
  {"tool":"plan_goal","targetAmount":число,"months":число,"targetDate":"YYYY-MM-DD","purpose":"цель"}
  Поля months и targetDate необязательны. Не придумывай срок, если клиент его не назвал.
- В остальных случаях отвечай обычным текстом.`

// contextMessage renders retrieved products for the model.
func contextMessage(products []core.Product) string {
	var b strings.Builder
	b.WriteString("Продукты банка, относящиеся к вопросу:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s (%s), от %s", p.Name, p.Type, core.FormatTenge(p.MinAmount))
		if p.TermMonths > 0 {
			fmt.Fprintf(&b, ", срок %d мес.", p.TermMonths)
		}
		if len(p.HalalTags) > 0 {
			fmt.Fprintf(&b, ", %s", strings.Join(p.HalalTags, ", "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
