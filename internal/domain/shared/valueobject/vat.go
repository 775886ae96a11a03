package valueobject

import "github.com/shopspring/decimal"

// VATBreakdown splits a gross cost into the export VAT refund the company
// expects to recover and the net cost that actually burdens the order.
type VATBreakdown struct {
	Gross  decimal.Decimal
	Refund decimal.Decimal
	Net    decimal.Decimal
}

// ComputeVATRefund computes the refundable VAT portion of a gross amount.
// ratePercent is a percentage (13 means 13%). When the purchase is not
// refundable, or the rate is not positive, the refund is zero and the full
// gross amount is the net cost.
//
// Invariant: Net + Refund == Gross for every input.
func ComputeVATRefund(gross decimal.Decimal, ratePercent decimal.Decimal, refundable bool) VATBreakdown {
	refund := decimal.Zero
	if refundable && ratePercent.IsPositive() {
		refund = gross.Mul(ratePercent).Div(decimal.NewFromInt(100))
	}
	return VATBreakdown{
		Gross:  gross,
		Refund: refund,
		Net:    gross.Sub(refund),
	}
}
