// Package scanner orchestrates the two pipelines: quote harvesting into
// signal payloads, and candidate ranking into focus payloads. The focus
// artifact written by one cycle biases the signal builder of the next.
package scanner

import (
	"context"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hetulpatel/edgescan/internal/cache"
	"github.com/hetulpatel/edgescan/internal/entropy"
	"github.com/hetulpatel/edgescan/internal/evmrpc"
	"github.com/hetulpatel/edgescan/internal/focus"
	"github.com/hetulpatel/edgescan/internal/llm"
	"github.com/hetulpatel/edgescan/internal/logging"
	"github.com/hetulpatel/edgescan/internal/manifest"
	"github.com/hetulpatel/edgescan/internal/queue"
	"github.com/hetulpatel/edgescan/internal/quotes"
	"github.com/hetulpatel/edgescan/internal/signals"
	"github.com/hetulpatel/edgescan/internal/solrpc"
	"github.com/hetulpatel/edgescan/internal/storage/sqlite"
	"github.com/hetulpatel/edgescan/internal/store"
)

// Default artifact and manifest locations relative to the working directory.
const (
	DefaultEVMManifestPath = "manifests/evm_univ2.json"
	DefaultSolManifestPath = "manifests/solana_accounts.json"
	DefaultSignalsPath     = "signals.json"
	DefaultFocusPath       = "cache/focus.json"
)

// EVMFetcher is the primary-chain collaborator.
type EVMFetcher interface {
	FetchPairPrices(ctx context.Context, m *manifest.EVM) []quotes.Quote
	LatestBlockNumber(ctx context.Context) string
}

// SolFetcher is the second-chain collaborator; its output is best-effort.
type SolFetcher interface {
	FetchFeedMeta(ctx context.Context, m *manifest.Solana) []quotes.FeedMeta
	LatestBlockhash(ctx context.Context) string
}

// Config wires the service. Only the paths matter for the core contract;
// History, Cache and the Kafka writers are optional sinks, and a nil Oracle
// means the focus ranker always takes its deterministic fallback.
type Config struct {
	EVMManifestPath string
	SolManifestPath string
	SignalsPath     string
	FocusPath       string

	Oracle     llm.Oracle
	FocusLimit int
	RPCTimeout time.Duration

	History       *sqlite.Store
	Cache         cache.PayloadCache
	SignalsWriter *kafka.Writer
	FocusWriter   *kafka.Writer

	// Factories exist so tests can substitute fake chains.
	NewEVMFetcher func(cfg evmrpc.Config) EVMFetcher
	NewSolFetcher func(cfg solrpc.Config) SolFetcher
}

// Service runs the pipelines. All inputs are passed explicitly per call or
// resolved from the configured paths; nothing is loaded at package level.
type Service struct {
	evmManifestPath string
	solManifestPath string
	signalsPath     string
	focusPath       string

	ranker     *focus.Ranker
	rpcTimeout time.Duration

	history       *sqlite.Store
	cache         cache.PayloadCache
	signalsWriter *kafka.Writer
	focusWriter   *kafka.Writer

	newEVMFetcher func(cfg evmrpc.Config) EVMFetcher
	newSolFetcher func(cfg solrpc.Config) SolFetcher
}

// New builds a service with defaults applied.
func New(cfg Config) *Service {
	s := &Service{
		evmManifestPath: cfg.EVMManifestPath,
		solManifestPath: cfg.SolManifestPath,
		signalsPath:     cfg.SignalsPath,
		focusPath:       cfg.FocusPath,
		ranker:          focus.NewRanker(cfg.Oracle, cfg.FocusLimit),
		rpcTimeout:      cfg.RPCTimeout,
		history:         cfg.History,
		cache:           cfg.Cache,
		signalsWriter:   cfg.SignalsWriter,
		focusWriter:     cfg.FocusWriter,
		newEVMFetcher:   cfg.NewEVMFetcher,
		newSolFetcher:   cfg.NewSolFetcher,
	}
	if s.evmManifestPath == "" {
		s.evmManifestPath = DefaultEVMManifestPath
	}
	if s.solManifestPath == "" {
		s.solManifestPath = DefaultSolManifestPath
	}
	if s.signalsPath == "" {
		s.signalsPath = DefaultSignalsPath
	}
	if s.focusPath == "" {
		s.focusPath = DefaultFocusPath
	}
	if s.rpcTimeout <= 0 {
		s.rpcTimeout = 10 * time.Second
	}
	if s.newEVMFetcher == nil {
		s.newEVMFetcher = func(cfg evmrpc.Config) EVMFetcher {
			return evmrpc.NewClient(cfg)
		}
	}
	if s.newSolFetcher == nil {
		s.newSolFetcher = func(cfg solrpc.Config) SolFetcher {
			return solrpc.NewClient(cfg)
		}
	}
	return s
}

// GenerateSignals runs a scan cycle. Nil arguments resolve from the
// configured manifest and focus paths. The result is always a well-formed
// payload; degraded inputs just shrink it toward zero signals.
func (s *Service) GenerateSignals(ctx context.Context, evmMan *manifest.EVM, solMan *manifest.Solana, focusTargets []string) *signals.Payload {
	if evmMan == nil {
		evmMan = manifest.LoadEVM(s.evmManifestPath)
	}
	if solMan == nil {
		solMan = manifest.LoadSolana(s.solManifestPath)
	}
	if focusTargets == nil {
		focusTargets = store.FocusTargets(s.focusPath)
	}

	built := []signals.Signal{}
	if len(evmMan.Pairs) > 0 {
		fetcher := s.newEVMFetcher(evmrpc.Config{RPCURL: evmMan.RPCURL, Timeout: s.rpcTimeout})
		prices := fetcher.FetchPairPrices(ctx, evmMan)
		built = signals.Build(prices, focusTargets)
		logging.Infof("[scanner] scanned %d pairs, %d signals (focus targets: %d)", len(evmMan.Pairs), len(built), len(focusTargets))
	}

	if len(solMan.PythPrices) > 0 {
		fetcher := s.newSolFetcher(solrpc.Config{RPCURL: solMan.RPCURL, Timeout: s.rpcTimeout})
		meta := fetcher.FetchFeedMeta(ctx, solMan)
		logging.Debugf("[scanner] second-chain feed metadata: %d records", len(meta))
	}

	payload := &signals.Payload{
		GeneratedAt: time.Now().Unix(),
		Signals:     built,
	}

	s.recordSignals(ctx, payload)
	return payload
}

// WriteSignals persists the payload as the signal artifact and publishes it
// downstream. The returned path is the artifact location.
func (s *Service) WriteSignals(ctx context.Context, payload *signals.Payload, path string) (string, error) {
	if path == "" {
		path = s.signalsPath
	}
	written, err := store.WriteArtifact(path, payload)
	if err != nil {
		return "", err
	}
	if s.signalsWriter != nil {
		if err := queue.PublishSignals(ctx, s.signalsWriter, payload); err != nil {
			logging.Warnf("[scanner] publish signals: %v", err)
		}
	}
	return written, nil
}

// ComputeFocus mixes fresh chain entropy, ranks the candidate universe, and
// optionally persists the result as the focus artifact consumed by the next
// scan cycle.
func (s *Service) ComputeFocus(ctx context.Context, persist bool) *focus.Payload {
	evmMan := manifest.LoadEVM(s.evmManifestPath)
	solMan := manifest.LoadSolana(s.solManifestPath)

	venues := manifest.Venues(evmMan, solMan)
	symbols := manifest.Symbols(evmMan, solMan)

	evmBlock := ""
	if evmMan.RPCURL != "" {
		evmBlock = s.newEVMFetcher(evmrpc.Config{RPCURL: evmMan.RPCURL, Timeout: s.rpcTimeout}).LatestBlockNumber(ctx)
	}
	solBlockhash := ""
	if solMan.RPCURL != "" {
		solBlockhash = s.newSolFetcher(solrpc.Config{RPCURL: solMan.RPCURL, Timeout: s.rpcTimeout}).LatestBlockhash(ctx)
	}

	ent := entropy.Mix(evmBlock, solBlockhash, strings.Join(symbols, ","))
	candidates := focus.Candidates(venues, symbols)
	targets, raw, source := s.ranker.Rank(ctx, candidates, ent)

	payload := &focus.Payload{
		Entropy: ent,
		Targets: targets,
		Source:  source,
		Raw:     raw,
	}
	logging.Infof("[scanner] focus: %d targets from %d candidates (source=%s)", len(targets), len(candidates), source)

	s.recordFocus(ctx, payload)

	if persist {
		if _, err := store.WriteArtifact(s.focusPath, payload); err != nil {
			logging.Errorf("[scanner] write focus artifact: %v", err)
		}
		if s.focusWriter != nil {
			if err := queue.PublishFocus(ctx, s.focusWriter, payload); err != nil {
				logging.Warnf("[scanner] publish focus: %v", err)
			}
		}
	}
	return payload
}

// LatestCached returns the freshest payload mirrored into the cache under
// the given key (cache.KeySignals or cache.KeyFocus). A disabled cache, a
// miss, or a read failure all report not-found.
func (s *Service) LatestCached(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, ok, err := s.cache.GetLatest(ctx, key)
	if err != nil {
		logging.Warnf("[scanner] cache read (%s): %v", key, err)
		return nil, false
	}
	return raw, ok
}

// recordSignals mirrors a scan into the optional history and cache sinks.
func (s *Service) recordSignals(ctx context.Context, payload *signals.Payload) {
	if s.history != nil {
		if err := s.history.InsertSignalRun(ctx, payload); err != nil {
			logging.Warnf("[scanner] history insert (signals): %v", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.SetLatest(ctx, cache.KeySignals, payload); err != nil {
			logging.Warnf("[scanner] cache mirror (signals): %v", err)
		}
	}
}

func (s *Service) recordFocus(ctx context.Context, payload *focus.Payload) {
	if s.history != nil {
		if err := s.history.InsertFocusRun(ctx, payload); err != nil {
			logging.Warnf("[scanner] history insert (focus): %v", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.SetLatest(ctx, cache.KeyFocus, payload); err != nil {
			logging.Warnf("[scanner] cache mirror (focus): %v", err)
		}
	}
}
