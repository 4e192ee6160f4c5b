package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/hetulpatel/edgescan/internal/logging"
	"github.com/hetulpatel/edgescan/internal/scanner"
	sqlstore "github.com/hetulpatel/edgescan/internal/storage/sqlite"
)

// One-shot scan: harvest prices, build signals, write the artifact.
func main() {
	godotenv.Load()
	logging.InitFromEnv()
	ctx := context.Background()

	cfg := scanner.Config{
		EVMManifestPath: os.Getenv("EVM_MANIFEST"),
		SolManifestPath: os.Getenv("SOL_MANIFEST"),
		SignalsPath:     os.Getenv("SIGNALS_PATH"),
		FocusPath:       os.Getenv("FOCUS_PATH"),
	}

	if path := os.Getenv("SQLITE_PATH"); path != "" {
		store, err := sqlstore.Open(path)
		if err != nil {
			logging.Fatalf("[harvest] open sqlite: %v", err)
		}
		defer store.Close()
		if err := store.CreateTables(ctx); err != nil {
			logging.Fatalf("[harvest] create tables: %v", err)
		}
		cfg.History = store
	}

	svc := scanner.New(cfg)
	payload := svc.GenerateSignals(ctx, nil, nil, nil)
	written, err := svc.WriteSignals(ctx, payload, "")
	if err != nil {
		logging.Fatalf("[harvest] write signals: %v", err)
	}
	fmt.Printf("wrote %s (%d signals)\n", written, len(payload.Signals))
}
