package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hetulpatel/edgescan/internal/focus"
	"github.com/hetulpatel/edgescan/internal/signals"
)

// InsertSignalRun stores the outcome of one scan cycle (empty or not).
func (s *Store) InsertSignalRun(ctx context.Context, payload *signals.Payload) error {
	if s == nil || s.db == nil || payload == nil {
		return fmt.Errorf("sqlite store not initialized or payload nil")
	}

	rawJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var bestSymbol string
	var bestEdge float64
	if len(payload.Signals) > 0 {
		bestSymbol = payload.Signals[0].Symbol
		bestEdge = payload.Signals[0].EdgeBps
	}

	const query = `
INSERT INTO signal_runs (generated_at, signal_count, best_symbol, best_edge_bps, payload_json, recorded_at)
VALUES (?, ?, ?, ?, ?, ?)
`
	_, err = s.db.ExecContext(
		ctx,
		query,
		payload.GeneratedAt,
		len(payload.Signals),
		bestSymbol,
		bestEdge,
		string(rawJSON),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// InsertFocusRun stores the outcome of one focus computation.
func (s *Store) InsertFocusRun(ctx context.Context, payload *focus.Payload) error {
	if s == nil || s.db == nil || payload == nil {
		return fmt.Errorf("sqlite store not initialized or payload nil")
	}

	targetsJSON, err := json.Marshal(payload.Targets)
	if err != nil {
		return fmt.Errorf("marshal targets: %w", err)
	}

	const query = `
INSERT INTO focus_runs (entropy, source, target_count, targets_json, raw_output, recorded_at)
VALUES (?, ?, ?, ?, ?, ?)
`
	_, err = s.db.ExecContext(
		ctx,
		query,
		payload.Entropy,
		string(payload.Source),
		len(payload.Targets),
		string(targetsJSON),
		payload.Raw,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}
