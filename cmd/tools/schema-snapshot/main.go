// cmd/tools/schema-snapshot/main.go
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"survey-analyst/internal/common/config"
	"survey-analyst/internal/common/database"
	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/introspection"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (defaults to configs/config.yaml)")
	out := flag.String("out", "configs/schema-snapshot.yaml", "where to write the snapshot")
	suffix := flag.String("suffix", "", "table suffix to keep (defaults to intent.table_suffix)")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	if *suffix == "" {
		*suffix = cfg.Intent.TableSuffix
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		zapLog.Fatal("database open failed", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	src, err := introspection.NewSQLIntrospector(db.DB, db.Dialect, cfg.Introspection.Schema,
		config.GetDuration(cfg.Introspection.Timeout), log)
	if err != nil {
		zapLog.Fatal("introspector setup failed", zap.Error(err))
	}

	count, err := writeSnapshot(ctx, src, *suffix, *out)
	if err != nil {
		zapLog.Error("snapshot failed", zap.Error(err))
		os.Exit(1)
	}
	zapLog.Info("schema snapshot written",
		zap.String("path", *out),
		zap.String("suffix", *suffix),
		zap.Int("tables", count),
	)
}

func writeSnapshot(ctx context.Context, src introspection.Introspector, suffix, path string) (int, error) {
	snap, err := introspection.Capture(ctx, src, suffix)
	if err != nil {
		return 0, err
	}
	if err := introspection.SaveSnapshot(path, snap); err != nil {
		return 0, err
	}
	return len(snap.Tables), nil
}
