package money

import (
	"github.com/nusa-erp/erp-api/internal/domain"
	"github.com/shopspring/decimal"
)

// TotalsInput is everything the aggregator needs from a document
type TotalsInput struct {
	LineTotals    []int64
	DiscountType  domain.DiscountType
	DiscountValue decimal.Decimal
	TaxRate       decimal.Decimal
	ExchangeRate  decimal.Decimal
}

// Totals holds the document-level derived amounts
type Totals struct {
	Subtotal          int64
	DiscountAmount    int64
	TaxableAmount     int64
	TaxAmount         int64
	Total             int64
	BaseCurrencyTotal int64
}

// Aggregate computes document totals from line totals. Document tax is taken
// from the taxable amount, never summed from the per-line tax amounts.
// A fixed discount is clamped to [0, subtotal].
func Aggregate(in TotalsInput) (Totals, error) {
	if in.TaxRate.IsNegative() {
		return Totals{}, domain.NewInvalidInput("tax rate must not be negative, got %s", in.TaxRate.String())
	}
	rate := in.ExchangeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}
	if !rate.IsPositive() {
		return Totals{}, domain.NewInvalidInput("exchange rate must be greater than zero, got %s", in.ExchangeRate.String())
	}
	if err := CheckScale("exchange rate", rate, RateScale); err != nil {
		return Totals{}, err
	}
	if err := CheckScale("tax rate", in.TaxRate, PercentScale); err != nil {
		return Totals{}, err
	}
	if err := CheckScale("discount value", in.DiscountValue, PercentScale); err != nil {
		return Totals{}, err
	}

	var subtotal int64
	for _, lt := range in.LineTotals {
		subtotal += lt
	}

	discount, err := documentDiscount(subtotal, in.DiscountType, in.DiscountValue)
	if err != nil {
		return Totals{}, err
	}

	taxable := subtotal - discount
	tax := Percent(taxable, in.TaxRate)
	total := taxable + tax

	return Totals{
		Subtotal:          subtotal,
		DiscountAmount:    discount,
		TaxableAmount:     taxable,
		TaxAmount:         tax,
		Total:             total,
		BaseCurrencyTotal: Round(decimal.NewFromInt(total).Mul(rate)),
	}, nil
}

func documentDiscount(subtotal int64, kind domain.DiscountType, value decimal.Decimal) (int64, error) {
	switch kind {
	case domain.DiscountNone, "":
		return 0, nil
	case domain.DiscountPercentage:
		if value.IsNegative() || value.GreaterThan(hundred) {
			return 0, domain.NewInvalidInput("discount percentage must be between 0 and 100, got %s", value.String())
		}
		return Percent(subtotal, value), nil
	case domain.DiscountFixed:
		if value.IsNegative() {
			return 0, domain.NewInvalidInput("fixed discount must not be negative, got %s", value.String())
		}
		amount := Round(value)
		if amount > subtotal {
			amount = subtotal
		}
		if amount < 0 {
			amount = 0
		}
		return amount, nil
	default:
		return 0, domain.NewInvalidInput("unknown discount type %q", kind)
	}
}

// Recalculate derives every line's amounts and the document totals, writing
// the results back onto doc and its lines.
func Recalculate(doc *domain.Document) error {
	lineTotals := make([]int64, len(doc.Lines))
	for i := range doc.Lines {
		line := &doc.Lines[i]
		amounts, err := CalculateLine(LineInput{
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
			TaxRate:         line.TaxRate,
		})
		if err != nil {
			return err
		}
		line.DiscountAmount = amounts.DiscountAmount
		line.TaxAmount = amounts.TaxAmount
		line.LineTotal = amounts.LineTotal
		lineTotals[i] = amounts.LineTotal
	}

	totals, err := Aggregate(TotalsInput{
		LineTotals:    lineTotals,
		DiscountType:  doc.DiscountType,
		DiscountValue: doc.DiscountValue,
		TaxRate:       doc.TaxRate,
		ExchangeRate:  doc.ExchangeRate,
	})
	if err != nil {
		return err
	}

	doc.Subtotal = totals.Subtotal
	doc.DiscountAmount = totals.DiscountAmount
	doc.TaxAmount = totals.TaxAmount
	doc.Total = totals.Total
	doc.BaseCurrencyTotal = totals.BaseCurrencyTotal
	return nil
}
