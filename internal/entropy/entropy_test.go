package entropy

import (
	"encoding/hex"
	"testing"
)

func TestMixShape(t *testing.T) {
	out := Mix("0x1234", "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", "A,B")
	if len(out) != 64 {
		t.Fatalf("digest length = %d, want 64", len(out))
	}
	if _, err := hex.DecodeString(out); err != nil {
		t.Fatalf("digest is not hex: %v", err)
	}
}

func TestMixToleratesEmptyInputs(t *testing.T) {
	// Failed chain reads degrade to empty strings; mixing must still work.
	out := Mix("", "", "")
	if len(out) != 64 {
		t.Fatalf("digest length = %d, want 64", len(out))
	}
}

func TestHashDependsOnParts(t *testing.T) {
	a := hash("1700000000.5", "block-a", "sym")
	b := hash("1700000000.5", "block-b", "sym")
	if a == b {
		t.Fatalf("different parts hashed identically")
	}
	if again := hash("1700000000.5", "block-a", "sym"); again != a {
		t.Fatalf("hash not deterministic for fixed inputs")
	}
}
