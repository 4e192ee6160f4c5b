package focus

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"github.com/hetulpatel/edgescan/internal/llm"
	"github.com/hetulpatel/edgescan/internal/logging"
)

const defaultLimit = 8

// Ranker asks the oracle to prioritize candidates and falls back to a
// deterministic shuffle when the oracle is unavailable or unusable.
type Ranker struct {
	oracle llm.Oracle
	limit  int
}

// NewRanker builds a ranker. A nil oracle is allowed and always takes the
// fallback path.
func NewRanker(oracle llm.Oracle, limit int) *Ranker {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Ranker{oracle: oracle, limit: limit}
}

// Rank returns up to limit targets, the raw oracle output (or the failure
// description), and the source tag. An empty candidate universe
// short-circuits without touching the oracle.
func (r *Ranker) Rank(ctx context.Context, candidates []string, entropy string) ([]string, string, Source) {
	if len(candidates) == 0 {
		return []string{}, "", SourceEmpty
	}

	raw, err := r.invoke(ctx, candidates, entropy)
	if err != nil {
		logging.Warnf("[focus] oracle unavailable, using fallback: %v", err)
		return r.fallback(candidates, entropy), err.Error(), SourceFallback
	}

	targets := extractStrings(raw)
	if len(targets) == 0 {
		logging.Warnf("[focus] oracle output unusable, using fallback")
		return r.fallback(candidates, entropy), raw, SourceFallback
	}
	if len(targets) > r.limit {
		targets = targets[:r.limit]
	}
	return targets, raw, SourceLLM
}

func (r *Ranker) invoke(ctx context.Context, candidates []string, entropy string) (string, error) {
	if r.oracle == nil {
		return "", fmt.Errorf("focus: no oracle configured")
	}
	return r.oracle.Rank(ctx, buildPrompt(candidates, entropy, r.limit))
}

func buildPrompt(candidates []string, entropy string, limit int) string {
	var b strings.Builder
	b.WriteString("Rank these DeFi scan targets by likelihood of mispricing now. ")
	fmt.Fprintf(&b, "Return JSON array of top %d strings only.\n", limit)
	fmt.Fprintf(&b, "entropy=%s\n", entropy)
	for _, c := range candidates {
		b.WriteString("- ")
		b.WriteString(c)
		b.WriteByte('\n')
	}
	return b.String()
}

// fallback shuffles the full candidate list with a seed derived from the
// entropy string: identical candidates + entropy always yield the same
// targets.
func (r *Ranker) fallback(candidates []string, entropy string) []string {
	sum := sha256.Sum256([]byte(entropy))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	rng := rand.New(rand.NewSource(seed))

	shuffled := make([]string, len(candidates))
	copy(shuffled, candidates)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > r.limit {
		shuffled = shuffled[:r.limit]
	}
	return shuffled
}

// extractStrings pulls the first [...] span out of the model's free-form
// output and keeps its string elements. Anything unparsable yields nil and
// the caller degrades to the fallback.
func extractStrings(raw string) []string {
	start := strings.Index(raw, "[")
	if start < 0 {
		return nil
	}
	end := strings.Index(raw[start:], "]")
	if end < 0 {
		return nil
	}
	var items []interface{}
	if err := json.Unmarshal([]byte(raw[start:start+end+1]), &items); err != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
