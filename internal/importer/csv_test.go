package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaman/internal/core"
)

func TestParseCSV_RussianExport(t *testing.T) {
	input := "\ufeffДата,Сумма,Магазин\n" +
		"05.01.2025,\"-12 500,50\",Magnum\n" +
		"06.01.25,-3 000,Yandex Go\n" +
		"2025-01-10,\"250 000\",Зарплата\n"

	res, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Transactions, 3)
	assert.False(t, res.HasCategoryColumn)

	for _, tx := range res.Transactions {
		_, err := core.ParseISODate(tx.Date)
		assert.NoError(t, err, tx.Date)
	}
	assert.Equal(t, core.Transaction{Date: "2025-01-05", Amount: -12500.5, Merchant: "Magnum"}, res.Transactions[0])
	assert.Equal(t, "2025-01-06", res.Transactions[1].Date)
	assert.Equal(t, -3000.0, res.Transactions[1].Amount)
	assert.Equal(t, 250000.0, res.Transactions[2].Amount)
}

func TestParseCSV_SemicolonAndCategory(t *testing.T) {
	input := "date; amount ; Description ;Категория\n" +
		"01/31/2025;-1 234,56;Starbucks;кафе\n" +
		"02/01/2025;oops;Broken;\n"

	res, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.True(t, res.HasCategoryColumn)
	assert.Equal(t, core.Transaction{Date: "2025-01-31", Amount: -1234.56, Merchant: "Starbucks", Category: "кафе"}, res.Transactions[0])
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{"empty", "", ErrEmptyFile, MsgEmptyFile},
		{"only bom and spaces", "\ufeff  \n", ErrEmptyFile, MsgEmptyFile},
		{"missing amount", "дата,магазин\n01.01.2025,Magnum\n", ErrMissingColumns, MsgMissingColumns},
		{"no valid rows", "дата,сумма\nnot a date,10\n01.01.2025,abc\n", ErrNoValidRows, MsgNoValidRows},
		{"header only", "дата,сумма\n", ErrNoValidRows, MsgNoValidRows},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var ie *ImportError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.wantMsg, ie.Error())
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"05.01.2025", "2025-01-05", true},
		{"5.1.25", "2025-01-05", true},
		{"2025-01-05", "2025-01-05", true},
		{"2025-01-05 13:45:00", "2025-01-05", true},
		{"12/31/2024", "2024-12-31", true},
		{"31.02.2025", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"-12 500,50", -12500.5, true},
		{"1 000", 1000, true},
		{"+500", 500, true},
		{"1,234.56", 1234.56, true},
		{"\u22127 000 ₸", -7000, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseAmount(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImport_DispatchesOnExtension(t *testing.T) {
	_, err := Import("statement.OFX", strings.NewReader("дата,сумма\n01.01.2025,-5\n"))
	assert.ErrorIs(t, err, ErrStatement)

	res, err := Import("statement.csv", strings.NewReader("дата,сумма\n01.01.2025,-5\n"))
	require.NoError(t, err)
	assert.Len(t, res.Transactions, 1)
}
