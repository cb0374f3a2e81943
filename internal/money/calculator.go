// Package money implements line and document amount calculations.
// All amounts are integers in the minor currency unit. Every derivation step
// rounds half away from zero before the next step uses it.
package money

import (
	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Decimal places of the stored quantity, percentage and exchange rate columns
const (
	QuantityScale = 4
	PercentScale  = 4
	RateScale     = 6
)

// CheckScale rejects d when it has more than places significant decimals.
// Trailing zeros do not count.
func CheckScale(field string, d decimal.Decimal, places int32) error {
	if !d.Equal(d.Truncate(places)) {
		return domain.NewInvalidInput("%s allows at most %d decimal places, got %s", field, places, d.String())
	}
	return nil
}

// LineInput is the priced content of a single line item
type LineInput struct {
	Quantity        decimal.Decimal
	UnitPrice       int64
	DiscountPercent decimal.Decimal
	TaxRate         decimal.Decimal
}

// LineAmounts holds the derived amounts of a line item
type LineAmounts struct {
	Gross          int64
	DiscountAmount int64
	Net            int64
	TaxAmount      int64
	LineTotal      int64
}

// Round rounds d to an integer, ties away from zero.
func Round(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// Percent returns round(amount * rate / 100).
func Percent(amount int64, rate decimal.Decimal) int64 {
	return Round(decimal.NewFromInt(amount).Mul(rate).Div(hundred))
}

// CalculateLine derives gross, discount, net, tax and line total for one line.
// Tax is reported per line but not added to the line total.
func CalculateLine(in LineInput) (LineAmounts, error) {
	if !in.Quantity.IsPositive() {
		return LineAmounts{}, domain.NewInvalidInput("quantity must be greater than zero, got %s", in.Quantity.String())
	}
	if in.UnitPrice < 0 {
		return LineAmounts{}, domain.NewInvalidInput("unit price must not be negative, got %d", in.UnitPrice)
	}
	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(hundred) {
		return LineAmounts{}, domain.NewInvalidInput("discount percent must be between 0 and 100, got %s", in.DiscountPercent.String())
	}
	if in.TaxRate.IsNegative() {
		return LineAmounts{}, domain.NewInvalidInput("tax rate must not be negative, got %s", in.TaxRate.String())
	}
	if err := CheckScale("quantity", in.Quantity, QuantityScale); err != nil {
		return LineAmounts{}, err
	}
	if err := CheckScale("discount percent", in.DiscountPercent, PercentScale); err != nil {
		return LineAmounts{}, err
	}
	if err := CheckScale("tax rate", in.TaxRate, PercentScale); err != nil {
		return LineAmounts{}, err
	}

	gross := Round(in.Quantity.Mul(decimal.NewFromInt(in.UnitPrice)))

	var discount int64
	if in.DiscountPercent.IsPositive() {
		discount = Percent(gross, in.DiscountPercent)
	}

	net := gross - discount
	tax := Percent(net, in.TaxRate)

	return LineAmounts{
		Gross:          gross,
		DiscountAmount: discount,
		Net:            net,
		TaxAmount:      tax,
		LineTotal:      net,
	}, nil
}

// FlatLine returns the amounts of a line that carries a single amount and no
// per-line discount or tax, as invoice and bill lines do.
func FlatLine(amount int64) (LineAmounts, error) {
	return CalculateLine(LineInput{
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: amount,
	})
}
