package goals

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaman/internal/core"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want core.Goal
	}{
		{
			name: "millions with horizon in months",
			text: "накопить 2 млн за 12 месяцев",
			want: core.Goal{Amount: 2_000_000, Months: 12},
		},
		{
			name: "date without amount",
			text: "накопить к 2027-12",
			want: core.Goal{Amount: 0, DateISO: "2027-12-01"},
		},
		{
			name: "years converted to months",
			text: "Хочу накопить 500 тыс за 2 года",
			want: core.Goal{Amount: 500_000, Months: 24},
		},
		{
			name: "space separated amount and dotted date with day",
			text: "на машину 3 500 000 к 2028.3.15",
			want: core.Goal{Amount: 3_500_000, DateISO: "2028-03-15", Purpose: "машин"},
		},
		{
			name: "billions word form",
			text: "1 миллиард за 10 лет на недвижимость",
			want: core.Goal{Amount: 1_000_000_000, Months: 120, Purpose: "недвижим"},
		},
		{
			name: "thousands full word",
			text: "отпуск 800 тысяч",
			want: core.Goal{Amount: 800_000, Purpose: "отпуск"},
		},
		{
			name: "comma separators",
			text: "накопить 1,200,000 на образование",
			want: core.Goal{Amount: 1_200_000, Purpose: "образован"},
		},
		{
			name: "first stem in list order wins",
			text: "квартира или машина, 10 млн",
			want: core.Goal{Amount: 10_000_000, Purpose: "квартир"},
		},
		{
			name: "amount too large for its scale is dropped",
			text: "накопить 10000000000 млрд за 12 месяцев",
			want: core.Goal{Amount: 0, Months: 12},
		},
		{
			name: "amount at the upper bound",
			text: "9223372036854775807 за 1 месяц",
			want: core.Goal{Amount: math.MaxInt64, Months: 1},
		},
		{
			name: "horizon in years too large is dropped",
			text: "9 млрд за 800000000000000000 лет",
			want: core.Goal{Amount: 9_000_000_000},
		},
		{
			name: "horizon with more digits than fit is dropped",
			text: "9 млн за 99999999999999999999 месяцев",
			want: core.Goal{Amount: 9_000_000},
		},
		{
			name: "invalid month in date is ignored",
			text: "100000 к 2027-13",
			want: core.Goal{Amount: 100_000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_NoNumber(t *testing.T) {
	for _, text := range []string{"просто текст", "", "накопить миллион"} {
		_, ok := Extract(text)
		assert.False(t, ok, text)
	}
}

func TestExtract_DateNeedsStandaloneWord(t *testing.T) {
	got, ok := Extract("вложить в рынок 2027-12")
	require.True(t, ok)
	assert.Empty(t, got.DateISO)

	got, ok = Extract("к 2027-12 накопить 100 тыс")
	require.True(t, ok)
	assert.Equal(t, core.Goal{Amount: 100_000, DateISO: "2027-12-01"}, got)
}

func TestExtract_NeverNegative(t *testing.T) {
	texts := []string{
		"накопить 10000000000 млрд за 12 месяцев",
		"9223372036854775807 миллиардов",
		"92233720368547758 тыс за 768614336404564650 лет",
		"99999999999999999999999 за 1 год",
		"1 млн за 9223372036854775807 месяцев",
	}
	for _, text := range texts {
		got, ok := Extract(text)
		require.True(t, ok, text)
		assert.GreaterOrEqual(t, got.Amount, int64(0), text)
		assert.GreaterOrEqual(t, got.Months, 0, text)
	}
}
