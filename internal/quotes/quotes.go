// Package quotes defines the normalized per-venue price records produced by
// the chain fetchers and consumed by the signal builder.
package quotes

import "github.com/shopspring/decimal"

// Quote is one venue's mid price for a symbol, or a fetch failure for that
// symbol/venue when Err is set. A failed quote never carries a usable Mid.
type Quote struct {
	Symbol           string          `json:"symbol"`
	Venue            string          `json:"venue"`
	Mid              decimal.Decimal `json:"mid"`
	Timestamp        int64           `json:"ts"`
	FeesBpsRoundtrip int64           `json:"fees_bps_roundtrip"`
	Err              string          `json:"error,omitempty"`
}

// Failed reports whether the fetch for this quote errored.
func (q Quote) Failed() bool {
	return q.Err != ""
}

// Errored builds a failure record that still identifies the symbol/venue.
func Errored(symbol, venue string, err error) Quote {
	return Quote{Symbol: symbol, Venue: venue, Err: err.Error()}
}

// FeedMeta is the best-effort metadata extracted per second-chain price
// feed: the slot the account was observed at and when we fetched it.
type FeedMeta struct {
	Symbol    string `json:"symbol"`
	Slot      uint64 `json:"slot,omitempty"`
	Timestamp int64  `json:"ts,omitempty"`
	Err       string `json:"error,omitempty"`
}
