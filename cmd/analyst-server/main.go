// cmd/analyst-server/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"survey-analyst/internal/api"
	"survey-analyst/internal/app"
	"survey-analyst/internal/common/camunda"
	"survey-analyst/internal/common/config"
	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/team"

	asr "survey-analyst/internal/workers/survey/analyze-survey-results"
	esq "survey-analyst/internal/workers/survey/execute-survey-query"
	rsi "survey-analyst/internal/workers/survey/resolve-survey-intent"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (defaults to configs/config.yaml)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting survey analyst...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tm, backends, err := app.BuildTeam(ctx, cfg, app.DefaultRetryPolicy, log)
	if err != nil {
		zapLog.Fatal("team assembly failed", zap.Error(err))
	}
	defer backends.Close(context.Background())

	opts := api.Options{
		Team:      tm,
		Checks:    backends.Checks(),
		ProcessID: cfg.Camunda.ProcessID,
		Logger:    log,
	}

	// --- Zeebe workers ---
	var workers *camunda.Workers
	if cfg.Camunda.Enabled {
		var zeebe *camunda.Client
		err := app.RetryWithBackoff(ctx, app.DefaultRetryPolicy, log, "Zeebe client initialization", func(context.Context) error {
			var err error
			zeebe, err = camunda.NewClient(camunda.ConfigFromApp(cfg.Camunda))
			return err
		})
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		zapLog.Info("Zeebe client connected successfully", zap.String("broker", cfg.Camunda.BrokerAddress))

		workers = camunda.NewWorkers(zeebe.GetClient(), log)
		startSurveyWorkers(workers, cfg, tm.Stages(), log)

		opts.Workflow = zeebe
		opts.Checks["camunda"] = zeebe.HealthCheck
	}

	server := api.NewServer(cfg.Server, api.New(opts).Handler())
	errCh := make(chan error, 1)
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		zapLog.Info("Shutdown signal received, stopping...")
	case err := <-errCh:
		if err != nil {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	if workers != nil {
		workers.Close()
	}

	zapLog.Info("Survey analyst stopped gracefully")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func startSurveyWorkers(workers *camunda.Workers, cfg *config.Config, stages team.Stages, log logger.Logger) {
	wcfg := config.GetWorkerConfig(cfg, rsi.TaskType)
	workers.Start(rsi.TaskType, wcfg, rsi.NewHandler(
		rsi.LoadConfig(wcfg),
		stages.Resolver, log,
	))

	wcfg = config.GetWorkerConfig(cfg, esq.TaskType)
	workers.Start(esq.TaskType, wcfg, esq.NewHandler(
		esq.LoadConfig(wcfg),
		stages.Builder, stages.Runner, log,
	))

	wcfg = config.GetWorkerConfig(cfg, asr.TaskType)
	workers.Start(asr.TaskType, wcfg, asr.NewHandler(
		asr.LoadConfig(wcfg),
		stages.Analyzer, log,
	))

	log.Info("survey workers registered", map[string]interface{}{"taskTypes": workers.TaskTypes()})
}
