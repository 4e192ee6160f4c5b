package manifest

import (
	"encoding/json"
	"os"
	"sort"
)

// Token describes one side of a tracked pair; only the decimal exponent
// matters for price normalization.
type Token struct {
	Decimals int `json:"decimals"`
}

// Pair is a tracked UniswapV2-style pool on the EVM chain. A nil fee means
// the manifest omitted the key; an explicit 0 means a fee-free pool.
type Pair struct {
	Pair             string `json:"pair"`
	Symbol           string `json:"symbol"`
	Venue            string `json:"venue"`
	Token0           Token  `json:"token0"`
	Token1           Token  `json:"token1"`
	FeesBpsRoundtrip *int64 `json:"fees_bps_roundtrip"`
}

// EVM is the externally maintained list of EVM pairs to scan.
type EVM struct {
	RPCURL string `json:"rpc_url"`
	Pairs  []Pair `json:"pairs"`
}

// Pool is a tracked pool on the second chain.
type Pool struct {
	Symbol string `json:"symbol"`
	Venue  string `json:"venue"`
}

// PythFeed maps a price feed symbol to its on-chain account.
type PythFeed struct {
	Account string `json:"account"`
	Symbol  string `json:"symbol"`
}

// Solana lists the second chain's pools and pyth price accounts.
type Solana struct {
	RPCURL     string     `json:"rpc_url"`
	Pools      []Pool     `json:"pools"`
	PythPrices []PythFeed `json:"pyth_prices"`
}

const (
	defaultSolVenue  = "RAYDIUM"
	defaultSolSymbol = "SOL/USDC"
)

// LoadEVM reads the EVM manifest. A missing or unparsable file yields an
// empty manifest, never an error.
func LoadEVM(path string) *EVM {
	var m EVM
	if !loadJSON(path, &m) {
		return &EVM{}
	}
	return &m
}

// LoadSolana reads the second-chain manifest with the same degradation rules.
func LoadSolana(path string) *Solana {
	var m Solana
	if !loadJSON(path, &m) {
		return &Solana{}
	}
	return &m
}

func loadJSON(path string, out interface{}) bool {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// Venues returns the distinct venues across both manifests, sorted.
func Venues(evm *EVM, sol *Solana) []string {
	set := make(map[string]struct{})
	if evm != nil {
		for _, p := range evm.Pairs {
			set[p.Venue] = struct{}{}
		}
	}
	if sol != nil {
		for _, p := range sol.Pools {
			venue := p.Venue
			if venue == "" {
				venue = defaultSolVenue
			}
			set[venue] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// Symbols returns the distinct symbols across both manifests, sorted.
func Symbols(evm *EVM, sol *Solana) []string {
	set := make(map[string]struct{})
	if evm != nil {
		for _, p := range evm.Pairs {
			set[p.Symbol] = struct{}{}
		}
	}
	if sol != nil {
		for _, p := range sol.Pools {
			symbol := p.Symbol
			if symbol == "" {
				symbol = defaultSolSymbol
			}
			set[symbol] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		if k == "" {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
