// Package evmrpc reads UniswapV2-style reserves over JSON-RPC and turns
// them into normalized quotes.
package evmrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hetulpatel/edgescan/internal/logging"
	"github.com/hetulpatel/edgescan/internal/manifest"
	"github.com/hetulpatel/edgescan/internal/quotes"
)

// getReserves() selector on UniswapV2 pairs.
const getReservesSelector = "0x0902f1ac"

const reservesHexLen = 192 // 3 ABI words of 32 bytes each

// defaultFeesBps applies when a manifest entry omits the fee key entirely.
const defaultFeesBps = 30

// Client issues JSON-RPC calls against one EVM endpoint.
type Client struct {
	rpcURL     string
	httpClient *http.Client
}

// Config controls optional overrides for the client.
type Config struct {
	RPCURL  string
	Timeout time.Duration
}

// NewClient builds an EVM RPC client with sane defaults.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		rpcURL: cfg.RPCURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchPairPrices reads reserves for every pair in the manifest. Each pair
// resolves independently: a failed read becomes an error quote and never
// blocks its siblings.
func (c *Client) FetchPairPrices(ctx context.Context, m *manifest.EVM) []quotes.Quote {
	if m == nil || len(m.Pairs) == 0 {
		return nil
	}
	out := make([]quotes.Quote, 0, len(m.Pairs))
	for _, pair := range m.Pairs {
		q, err := c.fetchPair(ctx, pair)
		if err != nil {
			logging.Debugf("[evmrpc] pair %s@%s: %v", pair.Symbol, pair.Venue, err)
			out = append(out, quotes.Errored(pair.Symbol, pair.Venue, err))
			continue
		}
		out = append(out, q)
	}
	return out
}

func (c *Client) fetchPair(ctx context.Context, pair manifest.Pair) (quotes.Quote, error) {
	raw, err := c.ethCall(ctx, pair.Pair, getReservesSelector)
	if err != nil {
		return quotes.Quote{}, err
	}
	r0, r1, ts, err := parseReserves(raw)
	if err != nil {
		return quotes.Quote{}, err
	}
	base := decimal.NewFromBigInt(r0, -int32(pair.Token0.Decimals))
	quote := decimal.NewFromBigInt(r1, -int32(pair.Token1.Decimals))
	if base.IsZero() || quote.IsZero() {
		return quotes.Quote{}, fmt.Errorf("empty reserves")
	}
	fees := int64(defaultFeesBps)
	if pair.FeesBpsRoundtrip != nil {
		fees = *pair.FeesBpsRoundtrip
	}
	return quotes.Quote{
		Symbol:           pair.Symbol,
		Venue:            pair.Venue,
		Mid:              base.DivRound(quote, 18),
		Timestamp:        ts,
		FeesBpsRoundtrip: fees,
	}, nil
}

// LatestBlockNumber returns the current block id as the node reports it
// (hex string). Any failure degrades to "" so entropy mixing never stalls.
func (c *Client) LatestBlockNumber(ctx context.Context) string {
	raw, err := c.call(ctx, "eth_blockNumber", []interface{}{})
	if err != nil {
		logging.Debugf("[evmrpc] blockNumber: %v", err)
		return ""
	}
	var block string
	if err := json.Unmarshal(raw, &block); err != nil {
		return ""
	}
	return block
}

func (c *Client) ethCall(ctx context.Context, to, data string) (string, error) {
	params := []interface{}{
		map[string]string{"to": to, "data": data},
		"latest",
	}
	raw, err := c.call(ctx, "eth_call", params)
	if err != nil {
		return "", err
	}
	var result string
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("decode eth_call result: %w", err)
	}
	return result, nil
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	if c.rpcURL == "" {
		return nil, fmt.Errorf("evmrpc: rpc url not configured")
	}
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("evmrpc %s: status %d: %s", method, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("evmrpc %s: %s (code %d)", method, decoded.Error.Message, decoded.Error.Code)
	}
	return decoded.Result, nil
}

// parseReserves splits the fixed-width getReserves payload into reserve0,
// reserve1 and the pool's last-update timestamp.
func parseReserves(result string) (*big.Int, *big.Int, int64, error) {
	data := strings.TrimPrefix(result, "0x")
	if len(data) < reservesHexLen {
		data = strings.Repeat("0", reservesHexLen-len(data)) + data
	}
	words := make([]*big.Int, 3)
	for i := range words {
		w, ok := new(big.Int).SetString(data[i*64:(i+1)*64], 16)
		if !ok {
			return nil, nil, 0, fmt.Errorf("malformed reserves word %d", i)
		}
		words[i] = w
	}
	return words[0], words[1], words[2].Int64(), nil
}
