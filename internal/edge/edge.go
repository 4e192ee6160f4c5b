// Package edge computes cost-adjusted cross-venue spreads in basis points.
package edge

import "github.com/shopspring/decimal"

const (
	// Sentinel is returned for degenerate prices so ranking logic can
	// exclude them without a separate error path.
	Sentinel = -1e9

	// SlipBps and BufferBps are the fixed cost assumptions applied on top
	// of per-venue roundtrip fees.
	SlipBps   int64 = 3
	BufferBps int64 = 2

	// TTLSeconds is how long an emitted signal is considered actionable.
	TTLSeconds = 30

	// divScale keeps bid/ask ratios precise enough that basis-point scale
	// output is exact; float64 alone loses the tail digits when the
	// ratio sits close to 1.
	divScale int32 = 40
)

// Bps returns the edge of selling at bid and buying at ask, net of the
// given costs, in basis points. Non-positive prices yield Sentinel.
func Bps(bid, ask decimal.Decimal, feesBps, slipBps, bufferBps int64) float64 {
	if bid.Sign() <= 0 || ask.Sign() <= 0 {
		return Sentinel
	}
	gross := bid.DivRound(ask, divScale).Sub(decimal.NewFromInt(1))
	totalCost := decimal.NewFromInt(feesBps + slipBps + bufferBps).
		Div(decimal.NewFromInt(10_000))
	out, _ := gross.Sub(totalCost).Mul(decimal.NewFromInt(10_000)).Float64()
	return out
}

// GrossBps is Bps with all costs zeroed.
func GrossBps(bid, ask decimal.Decimal) float64 {
	return Bps(bid, ask, 0, 0, 0)
}
