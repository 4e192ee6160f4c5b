// Package entropy derives a cache-busting hash from volatile chain state.
package entropy

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Mix hashes the current wall clock together with the given parts (latest
// block identifiers, symbol fingerprint). Unavailable inputs should be
// passed as empty strings; the result is still well formed. Because the
// clock participates, two calls never repeat even for identical parts.
func Mix(parts ...string) string {
	now := strconv.FormatFloat(float64(time.Now().UnixNano())/1e9, 'f', -1, 64)
	return hash(now, parts...)
}

func hash(now string, parts ...string) string {
	joined := make([]string, 0, len(parts)+1)
	joined = append(joined, now)
	joined = append(joined, parts...)
	sum := sha256.Sum256([]byte(strings.Join(joined, "|")))
	return hex.EncodeToString(sum[:])
}
