package importer

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"zaman/internal/core"
)

type column int

const (
	colDate column = iota
	colAmount
	colMerchant
	colCategory
)

var headerSynonyms = map[string]column{
	"date":        colDate,
	"дата":        colDate,
	"amount":      colAmount,
	"сумма":       colAmount,
	"merchant":    colMerchant,
	"место":       colMerchant,
	"магазин":     colMerchant,
	"описание":    colMerchant,
	"description": colMerchant,
	"category":    colCategory,
	"категория":   colCategory,
}

var dateLayouts = []string{
	"2.1.2006",
	"2.1.06",
	"2006-01-02",
	"1/2/2006",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads a statement export. The delimiter is ';' when the header
// line contains one, otherwise ','. Rows with an unreadable date or amount
// are skipped.
func ParseCSV(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, importErr(ErrHeader, MsgHeader, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return Result{}, importErr(ErrEmptyFile, MsgEmptyFile, nil)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return Result{}, importErr(ErrHeader, MsgHeader, err)
	}
	cols := mapHeader(header)
	dateIdx, hasDate := cols[colDate]
	amountIdx, hasAmount := cols[colAmount]
	if !hasDate || !hasAmount {
		return Result{}, importErr(ErrMissingColumns, MsgMissingColumns, nil)
	}
	merchantIdx, hasMerchant := cols[colMerchant]
	categoryIdx, hasCategory := cols[colCategory]

	var txs []core.Transaction
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		date, ok := parseDate(field(record, dateIdx))
		if !ok {
			continue
		}
		amount, ok := parseAmount(field(record, amountIdx))
		if !ok {
			continue
		}
		tx := core.Transaction{Date: date, Amount: amount}
		if hasMerchant {
			tx.Merchant = strings.TrimSpace(field(record, merchantIdx))
		}
		if hasCategory {
			tx.Category = strings.TrimSpace(field(record, categoryIdx))
		}
		txs = append(txs, tx)
	}

	if len(txs) == 0 {
		return Result{}, importErr(ErrNoValidRows, MsgNoValidRows, nil)
	}
	return Result{Transactions: txs, HasCategoryColumn: hasCategory}, nil
}

func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.IndexByte(line, ';') >= 0 {
		return ';'
	}
	return ','
}

// mapHeader resolves header cells to known columns. The first occurrence of
// each column wins.
func mapHeader(header []string) map[column]int {
	cols := make(map[column]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.Join(strings.Fields(h), ""))
		key = strings.Trim(key, `"'`)
		c, ok := headerSynonyms[key]
		if !ok {
			continue
		}
		if _, seen := cols[c]; !seen {
			cols[c] = i
		}
	}
	return cols
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// parseDate normalizes the accepted date formats to YYYY-MM-DD. A trailing
// time of day is ignored.
func parseDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, " T"); i > 0 {
		s = s[:i]
	}
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(core.ISODate), true
		}
	}
	return "", false
}

var amountReplacer = strings.NewReplacer(
	" ", "",
	"\u00a0", "",
	"\u202f", "",
	"₸", "",
	"\u2212", "-",
)

// parseAmount accepts "-1 234,56", "1234.56", "+500" and similar. A comma
// is the decimal mark unless a dot is also present.
func parseAmount(raw string) (float64, bool) {
	s := amountReplacer.Replace(strings.TrimSpace(raw))
	s = strings.TrimSuffix(strings.TrimSuffix(s, "KZT"), "kzt")
	if strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}
