package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hetulpatel/edgescan/internal/focus"
)

func TestWriteArtifactCreatesDirsAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "focus.json")

	written, err := WriteArtifact(path, focus.Payload{Entropy: "aa", Targets: []string{"x"}, Source: focus.SourceFallback})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if written != path {
		t.Fatalf("returned path %q, want %q", written, path)
	}

	// Second write replaces wholesale.
	if _, err := WriteArtifact(path, focus.Payload{Entropy: "bb", Targets: []string{}, Source: focus.SourceEmpty}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var got focus.Payload
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Entropy != "bb" || got.Source != focus.SourceEmpty {
		t.Fatalf("artifact not replaced: %+v", got)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the artifact, found %d entries", len(entries))
	}
}

func TestWriteArtifactRequiresPath(t *testing.T) {
	if _, err := WriteArtifact("", struct{}{}); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestFocusTargetsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focus.json")
	want := []string{"price_gap|UNIV2|WETH/USDC", "depth_kink|SUSHI|WBTC/USDC"}
	if _, err := WriteArtifact(path, focus.Payload{Entropy: "e", Targets: want, Source: focus.SourceLLM}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := FocusTargets(path); !reflect.DeepEqual(got, want) {
		t.Fatalf("targets = %v, want %v", got, want)
	}
}

func TestFocusTargetsDegradesToNoFilter(t *testing.T) {
	if got := FocusTargets(filepath.Join(t.TempDir(), "missing.json")); got != nil {
		t.Fatalf("missing artifact should read as no filter, got %v", got)
	}

	path := filepath.Join(t.TempDir(), "corrupt.json")
	if err := os.WriteFile(path, []byte("{oops"), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	if got := FocusTargets(path); got != nil {
		t.Fatalf("corrupt artifact should read as no filter, got %v", got)
	}
}
