// Package goals turns free-form Russian savings requests into structured
// goals and computes the monthly contribution needed to reach them.
package goals

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"zaman/internal/core"
)

var (
	horizonRe = regexp.MustCompile(`(?:^|\s)за\s+(\d+)\s*(года|год|лет|месяцев|месяца|месяц)`)
	dateRe    = regexp.MustCompile(`(?:^|\s)к\s+(\d{4})[.\-](\d{1,2})(?:[.\-](\d{1,2}))?`)
	amountRe  = regexp.MustCompile(`(\d[\d\s\x{00A0},]*)\s*(тысяч[аи]?|тыс\.?|млрд|миллиард(?:а|ов)?|млн|миллион(?:а|ов)?)?`)
	digitRe   = regexp.MustCompile(`\d`)
)

// purposeStems are checked in order; the first stem found wins.
var purposeStems = []string{
	"квартир",
	"недвижим",
	"авт",
	"машин",
	"образован",
	"путешеств",
	"отпуск",
}

// Extract parses a savings goal out of text such as
// "накопить 2 млн за 12 месяцев" or "хочу на квартиру 15 млн к 2030-06".
//
// It reports false when the text holds no number at all. A goal with a
// date or horizon but no amount is returned with Amount 0.
func Extract(text string) (core.Goal, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if !digitRe.MatchString(s) {
		return core.Goal{}, false
	}

	var g core.Goal
	rest := s

	if m := horizonRe.FindStringSubmatchIndex(rest); m != nil {
		n, err := strconv.Atoi(rest[m[2]:m[3]])
		unit := rest[m[4]:m[5]]
		years := unit == "год" || unit == "года" || unit == "лет"
		if err == nil && n > 0 && (!years || n <= math.MaxInt/12) {
			if years {
				n *= 12
			}
			g.Months = n
		}
		rest = blank(rest, m[0], m[1])
	}

	if m := dateRe.FindStringSubmatchIndex(rest); m != nil {
		year := rest[m[2]:m[3]]
		month := rest[m[4]:m[5]]
		day := "01"
		if m[6] >= 0 {
			day = rest[m[6]:m[7]]
		}
		iso := fmt.Sprintf("%s-%s-%s", year, pad2(month), pad2(day))
		if _, err := core.ParseISODate(iso); err == nil {
			g.DateISO = iso
		}
		rest = blank(rest, m[0], m[1])
	}

	g.Amount = parseAmount(rest)
	g.Purpose = detectPurpose(s)

	return g, true
}

func parseAmount(s string) int64 {
	m := amountRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, m[1])
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	sc := scale(m[2])
	if n > math.MaxInt64/sc {
		return 0
	}
	return n * sc
}

func scale(word string) int64 {
	switch {
	case word == "":
		return 1
	case strings.HasPrefix(word, "тыс"):
		return 1_000
	case word == "млн" || strings.HasPrefix(word, "миллион"):
		return 1_000_000
	case word == "млрд" || strings.HasPrefix(word, "миллиард"):
		return 1_000_000_000
	}
	return 1
}

func detectPurpose(s string) string {
	for _, stem := range purposeStems {
		if strings.Contains(s, stem) {
			return stem
		}
	}
	return ""
}

// blank replaces s[from:to] with spaces so later matches keep their offsets.
func blank(s string, from, to int) string {
	return s[:from] + strings.Repeat(" ", to-from) + s[to:]
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
