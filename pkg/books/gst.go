package books

import "github.com/shopspring/decimal"

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// SplitInclusive decomposes a GST-inclusive total into base and tax parts for
// a percentage rate (18 means 18%). The base is rounded half away from zero
// to 2 places and the tax is the exact remainder, so base + gst == total
// always holds and no cents are lost.
func SplitInclusive(total, rate decimal.Decimal) (base, gst decimal.Decimal) {
	divisor := one.Add(rate.Div(hundred))
	base = total.Div(divisor).Round(2)
	gst = total.Sub(base)
	return base, gst
}
