// Package llm provides the ranking oracle implementations used by the
// focus ranker. Either a local model binary is shelled out to, or an
// OpenAI-compatible endpoint is called.
package llm

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Oracle ranks free-form prompts and returns the model's raw text output.
// Implementations must respect the context deadline and may fail; the
// caller is responsible for degrading to a deterministic fallback.
type Oracle interface {
	Rank(ctx context.Context, prompt string) (string, error)
}

const (
	defaultBin     = "ollama"
	defaultModel   = "codellama:13b"
	defaultTimeout = 45 * time.Second
)

// SubprocessOracle pipes the prompt to a local model runner on stdin and
// captures stdout.
type SubprocessOracle struct {
	bin     string
	model   string
	timeout time.Duration
}

// NewSubprocessOracle builds an oracle around an executable such as ollama.
func NewSubprocessOracle(bin, model string, timeout time.Duration) *SubprocessOracle {
	if strings.TrimSpace(bin) == "" {
		bin = defaultBin
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &SubprocessOracle{bin: bin, model: model, timeout: timeout}
}

// Rank runs `<bin> run <model>` with the prompt on stdin.
func (o *SubprocessOracle) Rank(ctx context.Context, prompt string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, o.bin, "run", o.model)
	cmd.Stdin = strings.NewReader(prompt)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("llm: run %s %s: %w", o.bin, o.model, err)
	}
	return string(out), nil
}
