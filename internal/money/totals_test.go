package money_test

import (
	"errors"
	"testing"

	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/nusa-erp/erp-api/internal/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name string
		in   money.TotalsInput
		want money.Totals
	}{
		{
			name: "single line with ppn",
			in:   money.TotalsInput{LineTotals: []int64{200000}, DiscountType: domain.DiscountNone, TaxRate: d("11"), ExchangeRate: d("1")},
			want: money.Totals{Subtotal: 200000, TaxableAmount: 200000, TaxAmount: 22000, Total: 222000, BaseCurrencyTotal: 222000},
		},
		{
			name: "percentage discount",
			in:   money.TotalsInput{LineTotals: []int64{100000, 50001}, DiscountType: domain.DiscountPercentage, DiscountValue: d("5"), TaxRate: d("11"), ExchangeRate: d("1")},
			want: money.Totals{Subtotal: 150001, DiscountAmount: 7500, TaxableAmount: 142501, TaxAmount: 15675, Total: 158176, BaseCurrencyTotal: 158176},
		},
		{
			name: "fixed discount",
			in:   money.TotalsInput{LineTotals: []int64{100000}, DiscountType: domain.DiscountFixed, DiscountValue: d("25000"), TaxRate: d("10"), ExchangeRate: d("1")},
			want: money.Totals{Subtotal: 100000, DiscountAmount: 25000, TaxableAmount: 75000, TaxAmount: 7500, Total: 82500, BaseCurrencyTotal: 82500},
		},
		{
			name: "fixed discount above subtotal is clamped",
			in:   money.TotalsInput{LineTotals: []int64{1000}, DiscountType: domain.DiscountFixed, DiscountValue: d("5000"), TaxRate: d("11"), ExchangeRate: d("1")},
			want: money.Totals{Subtotal: 1000, DiscountAmount: 1000, TaxableAmount: 0, TaxAmount: 0, Total: 0, BaseCurrencyTotal: 0},
		},
		{
			name: "foreign currency",
			in:   money.TotalsInput{LineTotals: []int64{1000}, TaxRate: d("0"), ExchangeRate: d("15750.5")},
			want: money.Totals{Subtotal: 1000, TaxableAmount: 1000, Total: 1000, BaseCurrencyTotal: 15750500},
		},
		{
			name: "no lines",
			in:   money.TotalsInput{TaxRate: d("11"), ExchangeRate: d("1")},
			want: money.Totals{},
		},
		{
			name: "unset exchange rate counts as one",
			in:   money.TotalsInput{LineTotals: []int64{300}, TaxRate: d("11")},
			want: money.Totals{Subtotal: 300, TaxableAmount: 300, TaxAmount: 33, Total: 333, BaseCurrencyTotal: 333},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := money.Aggregate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Subtotal-got.DiscountAmount+got.TaxAmount, got.Total)
		})
	}
}

func TestAggregate_TaxComesFromTaxableAmount(t *testing.T) {
	// Three lines whose individual taxes round up: 3 x round(5 * 11%) = 3,
	// while the document tax is round(15 * 11%) = 2.
	lines := []money.LineInput{
		{Quantity: d("1"), UnitPrice: 5, TaxRate: d("11")},
		{Quantity: d("1"), UnitPrice: 5, TaxRate: d("11")},
		{Quantity: d("1"), UnitPrice: 5, TaxRate: d("11")},
	}
	var lineTax int64
	totals := make([]int64, 0, len(lines))
	for _, l := range lines {
		a, err := money.CalculateLine(l)
		require.NoError(t, err)
		lineTax += a.TaxAmount
		totals = append(totals, a.LineTotal)
	}

	got, err := money.Aggregate(money.TotalsInput{LineTotals: totals, TaxRate: d("11"), ExchangeRate: d("1")})
	require.NoError(t, err)

	assert.Equal(t, int64(3), lineTax)
	assert.Equal(t, int64(2), got.TaxAmount)
	assert.Equal(t, int64(17), got.Total)
}

func TestAggregate_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   money.TotalsInput
	}{
		{"percentage above hundred", money.TotalsInput{DiscountType: domain.DiscountPercentage, DiscountValue: d("101")}},
		{"negative percentage", money.TotalsInput{DiscountType: domain.DiscountPercentage, DiscountValue: d("-1")}},
		{"negative fixed", money.TotalsInput{DiscountType: domain.DiscountFixed, DiscountValue: d("-1")}},
		{"negative tax", money.TotalsInput{TaxRate: d("-1")}},
		{"negative exchange rate", money.TotalsInput{ExchangeRate: d("-2")}},
		{"unknown discount type", money.TotalsInput{DiscountType: "bogus"}},
		{"discount beyond four places", money.TotalsInput{DiscountType: domain.DiscountPercentage, DiscountValue: d("7.50001")}},
		{"tax beyond four places", money.TotalsInput{TaxRate: d("11.00001")}},
		{"exchange rate beyond six places", money.TotalsInput{ExchangeRate: d("1.0000001")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := money.Aggregate(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		})
	}
}

func TestRecalculate_IsIdempotent(t *testing.T) {
	doc := &domain.Document{
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: d("2.5"),
		TaxRate:       d("11"),
		ExchangeRate:  decimal.NewFromInt(1),
		Lines: []domain.LineItem{
			{Quantity: d("2"), UnitPrice: 100000, DiscountPercent: d("0"), TaxRate: d("11")},
			{Quantity: d("0.75"), UnitPrice: 45999, DiscountPercent: d("12.5"), TaxRate: d("11")},
		},
	}

	require.NoError(t, money.Recalculate(doc))
	first := *doc
	firstLines := append([]domain.LineItem(nil), doc.Lines...)

	require.NoError(t, money.Recalculate(doc))

	assert.Equal(t, first.Subtotal, doc.Subtotal)
	assert.Equal(t, first.DiscountAmount, doc.DiscountAmount)
	assert.Equal(t, first.TaxAmount, doc.TaxAmount)
	assert.Equal(t, first.Total, doc.Total)
	assert.Equal(t, firstLines, doc.Lines)

	var sum int64
	for _, l := range doc.Lines {
		sum += l.LineTotal
	}
	assert.Equal(t, sum, doc.Subtotal)
	assert.Equal(t, doc.Subtotal-doc.DiscountAmount+doc.TaxAmount, doc.Total)
}
