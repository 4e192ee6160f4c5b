package focus

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type stubOracle struct {
	out    string
	err    error
	calls  int
	prompt string
}

func (s *stubOracle) Rank(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompt = prompt
	return s.out, s.err
}

func TestCandidatesCrossProduct(t *testing.T) {
	got := Candidates([]string{"SUSHI", "UNIV2"}, []string{"WETH/USDC"})
	if len(got) != 4*2*1 {
		t.Fatalf("expected 8 candidates, got %d", len(got))
	}
	want := "price_gap|UNIV2|WETH/USDC"
	found := false
	for _, c := range got {
		if c == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("candidate %q missing from %v", want, got)
	}
}

func TestRankEmptyUniverseSkipsOracle(t *testing.T) {
	oracle := &stubOracle{out: `["anything"]`}
	r := NewRanker(oracle, 8)
	targets, raw, source := r.Rank(context.Background(), nil, "abc")
	if source != SourceEmpty {
		t.Fatalf("source = %s, want empty", source)
	}
	if len(targets) != 0 || raw != "" {
		t.Fatalf("expected empty result, got targets=%v raw=%q", targets, raw)
	}
	if oracle.calls != 0 {
		t.Fatalf("oracle must not be invoked for an empty universe")
	}
}

func TestRankUsesOracleOutput(t *testing.T) {
	oracle := &stubOracle{out: "Sure, here you go:\n[\"price_gap|X|A\", 42, \"stale_oracle|Y|B\"] done"}
	r := NewRanker(oracle, 8)
	candidates := Candidates([]string{"X", "Y"}, []string{"A", "B"})

	targets, raw, source := r.Rank(context.Background(), candidates, "entropy")
	if source != SourceLLM {
		t.Fatalf("source = %s, want llm", source)
	}
	want := []string{"price_gap|X|A", "stale_oracle|Y|B"}
	if !reflect.DeepEqual(targets, want) {
		t.Fatalf("targets = %v, want %v", targets, want)
	}
	if raw == "" {
		t.Fatalf("raw oracle output must be carried for diagnostics")
	}
}

func TestRankCapsAtLimit(t *testing.T) {
	oracle := &stubOracle{out: `["a","b","c","d"]`}
	r := NewRanker(oracle, 2)
	targets, _, source := r.Rank(context.Background(), []string{"x"}, "e")
	if source != SourceLLM {
		t.Fatalf("source = %s, want llm", source)
	}
	if len(targets) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(targets))
	}
}

func TestRankPromptAsksForConfiguredLimit(t *testing.T) {
	oracle := &stubOracle{out: `["a"]`}
	r := NewRanker(oracle, 3)
	r.Rank(context.Background(), []string{"c1", "c2"}, "e")
	if !strings.Contains(oracle.prompt, "top 3") {
		t.Fatalf("prompt must request the configured limit, got %q", oracle.prompt)
	}
}

func TestRankFallbackIsDeterministic(t *testing.T) {
	oracle := &stubOracle{err: errors.New("model not found")}
	r := NewRanker(oracle, 8)
	candidates := Candidates([]string{"SUSHI", "UNIV2", "RAYDIUM"}, []string{"WETH/USDC", "SOL/USDC"})

	first, rawFirst, sourceFirst := r.Rank(context.Background(), candidates, "same-entropy")
	second, _, sourceSecond := r.Rank(context.Background(), candidates, "same-entropy")

	if sourceFirst != SourceFallback || sourceSecond != SourceFallback {
		t.Fatalf("sources = %s/%s, want fallback", sourceFirst, sourceSecond)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("fallback not deterministic: %v vs %v", first, second)
	}
	if len(first) != 8 {
		t.Fatalf("expected 8 fallback targets, got %d", len(first))
	}
	if rawFirst == "" {
		t.Fatalf("oracle failure description must be carried")
	}
}

func TestRankFallbackVariesWithEntropy(t *testing.T) {
	r := NewRanker(nil, 8)
	candidates := Candidates([]string{"A", "B", "C"}, []string{"S1", "S2", "S3"})

	one, _, _ := r.Rank(context.Background(), candidates, "entropy-one")
	two, _, _ := r.Rank(context.Background(), candidates, "entropy-two")
	if reflect.DeepEqual(one, two) {
		t.Fatalf("different entropy should reshuffle the fallback, both = %v", one)
	}
}

func TestRankUnusableOutputFallsBack(t *testing.T) {
	for _, out := range []string{"", "no brackets here", "[]", `["only", 1, "kept if string"`} {
		oracle := &stubOracle{out: out}
		r := NewRanker(oracle, 8)
		_, _, source := r.Rank(context.Background(), []string{"c1", "c2"}, "e")
		if source != SourceFallback {
			t.Fatalf("output %q: source = %s, want fallback", out, source)
		}
	}
}
