// Package focus enumerates scan-target candidates and ranks them, feeding
// the next scan cycle's symbol filter.
package focus

// The fixed anomaly kinds crossed with manifest venues/symbols to form the
// candidate universe.
var anomalyKinds = []string{"stale_oracle", "price_gap", "triangular_hint", "depth_kink"}

// Source tags where a focus payload's targets came from.
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
	SourceEmpty    Source = "empty"
)

// Payload is the whole-file focus artifact. Targets use the
// "<anomaly>|<venue>|<symbol>" form consumed by the signal builder.
type Payload struct {
	Entropy string   `json:"entropy"`
	Targets []string `json:"targets"`
	Source  Source   `json:"source"`
	Raw     string   `json:"raw,omitempty"`
}

// Candidates builds the anomaly x venue x symbol cross product. Venues and
// symbols are expected pre-deduplicated and sorted so the product is stable
// across invocations.
func Candidates(venues, symbols []string) []string {
	out := make([]string, 0, len(anomalyKinds)*len(venues)*len(symbols))
	for _, a := range anomalyKinds {
		for _, v := range venues {
			for _, s := range symbols {
				out = append(out, a+"|"+v+"|"+s)
			}
		}
	}
	return out
}
