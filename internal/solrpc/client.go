// Package solrpc fetches second-chain feed metadata. Its output is
// supplementary: every failure degrades to an error record or empty string
// so the primary pipeline is never blocked by this chain.
package solrpc

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/hetulpatel/edgescan/internal/logging"
	"github.com/hetulpatel/edgescan/internal/manifest"
	"github.com/hetulpatel/edgescan/internal/quotes"
)

// Client wraps a Solana RPC endpoint.
type Client struct {
	rpc     *rpc.Client
	timeout time.Duration
}

// Config controls optional overrides for the client.
type Config struct {
	RPCURL  string
	Timeout time.Duration
}

// NewClient builds a second-chain client with sane defaults.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	var inner *rpc.Client
	if cfg.RPCURL != "" {
		inner = rpc.New(cfg.RPCURL)
	}
	return &Client{rpc: inner, timeout: timeout}
}

// FetchFeedMeta reads account metadata for every pyth feed in the manifest.
// Only the observed slot and the fetch time are extracted; one bad feed
// never aborts the rest.
func (c *Client) FetchFeedMeta(ctx context.Context, m *manifest.Solana) []quotes.FeedMeta {
	if c == nil || m == nil || len(m.PythPrices) == 0 {
		return nil
	}
	out := make([]quotes.FeedMeta, 0, len(m.PythPrices))
	for _, feed := range m.PythPrices {
		meta, err := c.fetchFeed(ctx, feed)
		if err != nil {
			logging.Debugf("[solrpc] feed %s: %v", feed.Symbol, err)
			out = append(out, quotes.FeedMeta{Symbol: feed.Symbol, Err: err.Error()})
			continue
		}
		out = append(out, meta)
	}
	return out
}

func (c *Client) fetchFeed(ctx context.Context, feed manifest.PythFeed) (quotes.FeedMeta, error) {
	if c.rpc == nil {
		return quotes.FeedMeta{}, fmt.Errorf("solrpc: rpc url not configured")
	}
	account, err := solana.PublicKeyFromBase58(feed.Account)
	if err != nil {
		return quotes.FeedMeta{}, fmt.Errorf("parse account %q: %w", feed.Account, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	info, err := c.rpc.GetAccountInfoWithOpts(callCtx, account, &rpc.GetAccountInfoOpts{
		Encoding: solana.EncodingBase64,
	})
	if err != nil {
		return quotes.FeedMeta{}, err
	}
	return quotes.FeedMeta{
		Symbol:    feed.Symbol,
		Slot:      info.RPCContext.Context.Slot,
		Timestamp: time.Now().Unix(),
	}, nil
}

// LatestBlockhash returns the most recent blockhash, or "" on any failure
// (entropy input, must never propagate an error).
func (c *Client) LatestBlockhash(ctx context.Context) string {
	if c == nil || c.rpc == nil {
		return ""
	}
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.rpc.GetLatestBlockhash(callCtx, rpc.CommitmentFinalized)
	if err != nil || out == nil {
		logging.Debugf("[solrpc] latest blockhash: %v", err)
		return ""
	}
	return out.Value.Blockhash.String()
}
