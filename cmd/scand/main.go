package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/hetulpatel/edgescan/internal/cache"
	"github.com/hetulpatel/edgescan/internal/llm"
	"github.com/hetulpatel/edgescan/internal/logging"
	"github.com/hetulpatel/edgescan/internal/queue"
	"github.com/hetulpatel/edgescan/internal/scanner"
	"github.com/hetulpatel/edgescan/internal/server"
	sqlstore "github.com/hetulpatel/edgescan/internal/storage/sqlite"
)

func main() {
	godotenv.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := scanner.Config{
		EVMManifestPath: os.Getenv("EVM_MANIFEST"),
		SolManifestPath: os.Getenv("SOL_MANIFEST"),
		SignalsPath:     os.Getenv("SIGNALS_PATH"),
		FocusPath:       os.Getenv("FOCUS_PATH"),
		Oracle:          buildOracle(),
	}

	// Run history is opt-in: no SQLITE_PATH, no history.
	if path := os.Getenv("SQLITE_PATH"); path != "" {
		store, err := sqlstore.Open(path)
		if err != nil {
			logging.Fatalf("[scand] open sqlite: %v", err)
		}
		defer store.Close()
		if err := store.CreateTables(ctx); err != nil {
			logging.Fatalf("[scand] create tables: %v", err)
		}
		logging.Infof("[scand] run history at %s", store.Path())
		cfg.History = store
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		payloadCache, err := cache.NewRedisPayloadCache(
			addr,
			os.Getenv("REDIS_PASSWORD"),
			envInt("REDIS_DB", 0),
			time.Duration(envInt("REDIS_TTL_SECS", 300))*time.Second,
			os.Getenv("REDIS_PREFIX"),
		)
		if err != nil {
			logging.Fatalf("[scand] redis cache: %v", err)
		}
		defer payloadCache.Close()
		cfg.Cache = payloadCache
	}

	if brokers := queue.Brokers(); len(brokers) > 0 {
		signalsTopic := queue.TopicFromEnv("SIGNALS_KAFKA_TOPIC", queue.DefaultSignalsTopic)
		focusTopic := queue.TopicFromEnv("FOCUS_KAFKA_TOPIC", queue.DefaultFocusTopic)

		waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
		if err := queue.WaitForBroker(waitCtx, brokers); err != nil {
			logging.Fatalf("[scand] wait for broker: %v", err)
		}
		cancel()

		for _, topic := range []string{signalsTopic, focusTopic} {
			ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
			if err := queue.EnsureTopic(ensureCtx, brokers, topic); err != nil {
				logging.Errorf("[scand] ensure topic warning: %v", err)
			}
			cancelEnsure()
		}

		signalsWriter := queue.NewWriter(brokers, signalsTopic)
		defer signalsWriter.Close()
		focusWriter := queue.NewWriter(brokers, focusTopic)
		defer focusWriter.Close()
		cfg.SignalsWriter = signalsWriter
		cfg.FocusWriter = focusWriter
	}

	svc := scanner.New(cfg)
	srv := &http.Server{
		Addr:    envString("ADDR", ":8765"),
		Handler: server.New(svc).Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logging.Infof("[scand] listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Fatalf("[scand] serve: %v", err)
	}
}

// buildOracle picks the ranking oracle: a local model binary by default, or
// an OpenAI-compatible endpoint when LLM_MODE=openai.
func buildOracle() llm.Oracle {
	timeout := time.Duration(envInt("LLM_TIMEOUT_SECS", 45)) * time.Second
	if os.Getenv("LLM_MODE") == "openai" {
		client, err := llm.NewClient(llm.Config{
			APIKey:  os.Getenv("LLM_API_KEY"),
			BaseURL: os.Getenv("LLM_BASE_URL"),
			Model:   os.Getenv("LLM_MODEL"),
			Timeout: timeout,
		})
		if err != nil {
			logging.Errorf("[scand] openai oracle unavailable, ranking will use fallback: %v", err)
			return nil
		}
		return client
	}
	return llm.NewSubprocessOracle(os.Getenv("LLM_BIN"), os.Getenv("LLM_MODEL"), timeout)
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envString(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
