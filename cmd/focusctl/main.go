package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/hetulpatel/edgescan/internal/llm"
	"github.com/hetulpatel/edgescan/internal/logging"
	"github.com/hetulpatel/edgescan/internal/scanner"
)

// One-shot focus recomputation: mix entropy, rank candidates, persist.
func main() {
	godotenv.Load()
	logging.InitFromEnv()
	ctx := context.Background()

	timeout := time.Duration(envInt("LLM_TIMEOUT_SECS", 45)) * time.Second
	var oracle llm.Oracle = llm.NewSubprocessOracle(os.Getenv("LLM_BIN"), os.Getenv("LLM_MODEL"), timeout)
	if os.Getenv("LLM_MODE") == "openai" {
		client, err := llm.NewClient(llm.Config{
			APIKey:  os.Getenv("LLM_API_KEY"),
			BaseURL: os.Getenv("LLM_BASE_URL"),
			Model:   os.Getenv("LLM_MODEL"),
			Timeout: timeout,
		})
		if err != nil {
			logging.Fatalf("[focusctl] openai oracle: %v", err)
		}
		oracle = client
	}

	svc := scanner.New(scanner.Config{
		EVMManifestPath: os.Getenv("EVM_MANIFEST"),
		SolManifestPath: os.Getenv("SOL_MANIFEST"),
		FocusPath:       os.Getenv("FOCUS_PATH"),
		Oracle:          oracle,
	})

	payload := svc.ComputeFocus(ctx, true)
	fmt.Printf("focus: %d targets (source=%s)\n", len(payload.Targets), payload.Source)
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}
