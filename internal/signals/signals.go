// Package signals groups venue quotes into cross-venue edge signals.
package signals

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hetulpatel/edgescan/internal/edge"
	"github.com/hetulpatel/edgescan/internal/quotes"
)

// Assumptions records the cost model used for a signal's net edge.
type Assumptions struct {
	FeesBps   int64 `json:"fees_bps"`
	SlipBps   int64 `json:"slip_bps"`
	BufferBps int64 `json:"buffer_bps"`
}

// Signal is one cross-venue crossing: sell where the mid is highest, buy
// where it is lowest. "Bid" and "ask" name the two sides of that crossing,
// not order-book levels, so BestAsk above BestBid is legal input.
type Signal struct {
	Chain        string          `json:"chain"`
	Symbol       string          `json:"symbol"`
	BestBid      decimal.Decimal `json:"best_bid"`
	BestAsk      decimal.Decimal `json:"best_ask"`
	SellVenue    string          `json:"sell_venue"`
	BuyVenue     string          `json:"buy_venue"`
	EdgeBpsGross float64         `json:"edge_bps_gross"`
	EdgeBps      float64         `json:"edge_bps"`
	TTLSeconds   int             `json:"ttl_seconds"`
	Timestamp    int64           `json:"ts"`
	Assumptions  Assumptions     `json:"assumptions"`
}

// Payload is the whole-file artifact written per scan cycle; it replaces
// the previous cycle's artifact wholesale.
type Payload struct {
	GeneratedAt int64    `json:"generated_at"`
	Signals     []Signal `json:"signals"`
}

// Build selects the best crossing per symbol and returns signals sorted by
// net edge, descending. Error quotes and symbols with fewer than two live
// quotes are skipped. A non-empty focus target set keeps a symbol only when
// one of its two legs matches a price_gap or triangular_hint target.
func Build(prices []quotes.Quote, focusTargets []string) []Signal {
	grouped := make(map[string][]quotes.Quote)
	var order []string
	for _, q := range prices {
		if q.Failed() || q.Symbol == "" {
			continue
		}
		if _, seen := grouped[q.Symbol]; !seen {
			order = append(order, q.Symbol)
		}
		grouped[q.Symbol] = append(grouped[q.Symbol], q)
	}

	targets := make(map[string]struct{}, len(focusTargets))
	for _, t := range focusTargets {
		targets[t] = struct{}{}
	}

	now := time.Now().Unix()
	out := []Signal{}
	for _, symbol := range order {
		rows := grouped[symbol]
		if len(rows) < 2 {
			continue
		}

		// First occurrence of the extremum wins on ties; preferring the
		// lower-fee venue instead is a possible future policy knob.
		bestAsk, bestBid := rows[0], rows[0]
		for _, row := range rows[1:] {
			if row.Mid.LessThan(bestAsk.Mid) {
				bestAsk = row
			}
			if row.Mid.GreaterThan(bestBid.Mid) {
				bestBid = row
			}
		}

		if !focusMatch(symbol, bestAsk.Venue, targets) && !focusMatch(symbol, bestBid.Venue, targets) {
			continue
		}

		fees := bestAsk.FeesBpsRoundtrip
		if bestBid.FeesBpsRoundtrip > fees {
			fees = bestBid.FeesBpsRoundtrip
		}

		out = append(out, Signal{
			Chain:        "EVM",
			Symbol:       symbol,
			BestBid:      bestBid.Mid,
			BestAsk:      bestAsk.Mid,
			SellVenue:    bestBid.Venue,
			BuyVenue:     bestAsk.Venue,
			EdgeBpsGross: edge.GrossBps(bestBid.Mid, bestAsk.Mid),
			EdgeBps:      edge.Bps(bestBid.Mid, bestAsk.Mid, fees, edge.SlipBps, edge.BufferBps),
			TTLSeconds:   edge.TTLSeconds,
			Timestamp:    now,
			Assumptions: Assumptions{
				FeesBps:   fees,
				SlipBps:   edge.SlipBps,
				BufferBps: edge.BufferBps,
			},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EdgeBps > out[j].EdgeBps
	})
	return out
}

// focusMatch reports whether a venue/symbol leg is covered by the focus
// targets. An empty target set accepts everything.
func focusMatch(symbol, venue string, targets map[string]struct{}) bool {
	if len(targets) == 0 {
		return true
	}
	if _, ok := targets[fmt.Sprintf("price_gap|%s|%s", venue, symbol)]; ok {
		return true
	}
	_, ok := targets[fmt.Sprintf("triangular_hint|%s|%s", venue, symbol)]
	return ok
}
