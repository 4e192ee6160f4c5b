package signals

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hetulpatel/edgescan/internal/quotes"
)

func quote(symbol, venue string, mid float64, fees int64) quotes.Quote {
	return quotes.Quote{
		Symbol:           symbol,
		Venue:            venue,
		Mid:              decimal.NewFromFloat(mid),
		FeesBpsRoundtrip: fees,
	}
}

func TestBuildSkipsSymbolsWithFewerThanTwoQuotes(t *testing.T) {
	out := Build([]quotes.Quote{quote("WETH/USDC", "UNIV2", 100, 30)}, nil)
	if len(out) != 0 {
		t.Fatalf("expected no signals for a single quote, got %d", len(out))
	}
}

func TestBuildSkipsErrorQuotes(t *testing.T) {
	out := Build([]quotes.Quote{
		quote("WETH/USDC", "UNIV2", 100, 30),
		quotes.Errored("WETH/USDC", "SUSHI", errors.New("empty reserves")),
	}, nil)
	if len(out) != 0 {
		t.Fatalf("error quotes must not count toward a crossing, got %d signals", len(out))
	}
}

func TestBuildAllErroredQuotesSerializesEmptyArray(t *testing.T) {
	out := Build([]quotes.Quote{
		quotes.Errored("WETH/USDC", "UNIV2", errors.New("empty reserves")),
		quotes.Errored("WETH/USDC", "SUSHI", errors.New("rpc error")),
	}, nil)
	if out == nil {
		t.Fatal("Build must never return a nil slice")
	}
	raw, err := json.Marshal(Payload{GeneratedAt: 1, Signals: out})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if strings.Contains(string(raw), `"signals":null`) {
		t.Fatalf("signals must serialize as an empty array, got %s", raw)
	}
}

func TestBuildPicksExtremesAndComputesEdges(t *testing.T) {
	out := Build([]quotes.Quote{
		quote("WETH/USDC", "UNIV2", 100, 30),
		quote("WETH/USDC", "SUSHI", 99, 25),
		quote("WETH/USDC", "SHIBA", 99.5, 10),
	}, nil)
	if len(out) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(out))
	}
	sig := out[0]
	if sig.SellVenue != "UNIV2" || sig.BuyVenue != "SUSHI" {
		t.Fatalf("wrong venues: sell=%s buy=%s", sig.SellVenue, sig.BuyVenue)
	}
	// Conservative fee: max of the two legs.
	if sig.Assumptions.FeesBps != 30 {
		t.Fatalf("fees = %d, want 30", sig.Assumptions.FeesBps)
	}
	if sig.EdgeBpsGross < sig.EdgeBps {
		t.Fatalf("gross %v < net %v", sig.EdgeBpsGross, sig.EdgeBps)
	}
}

func TestBuildSortsDescendingByNetEdge(t *testing.T) {
	out := Build([]quotes.Quote{
		quote("A", "V1", 100, 30),
		quote("A", "V2", 99.9, 30), // small edge
		quote("B", "V1", 100, 30),
		quote("B", "V2", 95, 30), // big edge
	}, nil)
	if len(out) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(out))
	}
	if out[0].Symbol != "B" || out[1].Symbol != "A" {
		t.Fatalf("wrong order: %s then %s", out[0].Symbol, out[1].Symbol)
	}
	if out[0].EdgeBps < out[1].EdgeBps {
		t.Fatalf("not sorted descending: %v < %v", out[0].EdgeBps, out[1].EdgeBps)
	}
}

func TestBuildFocusFilter(t *testing.T) {
	targets := []string{"price_gap|X|SYM"}
	out := Build([]quotes.Quote{
		quote("SYM", "X", 100, 30),
		quote("SYM", "Y", 99, 30),
		quote("SYM2", "Z", 100, 30),
		quote("SYM2", "W", 99, 30),
	}, targets)
	if len(out) != 1 {
		t.Fatalf("expected exactly the focused symbol, got %d signals", len(out))
	}
	if out[0].Symbol != "SYM" {
		t.Fatalf("wrong symbol kept: %s", out[0].Symbol)
	}
}

func TestBuildEmptyFocusAcceptsAll(t *testing.T) {
	out := Build([]quotes.Quote{
		quote("SYM", "X", 100, 30),
		quote("SYM", "Y", 99, 30),
	}, []string{})
	if len(out) != 1 {
		t.Fatalf("empty focus set must accept every symbol, got %d signals", len(out))
	}
}

func TestBuildTieKeepsFirstSeenQuote(t *testing.T) {
	out := Build([]quotes.Quote{
		quote("SYM", "FIRST", 100, 30),
		quote("SYM", "SECOND", 100, 30),
	}, nil)
	if len(out) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(out))
	}
	if out[0].SellVenue != "FIRST" || out[0].BuyVenue != "FIRST" {
		t.Fatalf("tie must resolve to first-seen quote, got sell=%s buy=%s", out[0].SellVenue, out[0].BuyVenue)
	}
}
