// Package app connects the backends named in configuration and assembles the
// team on top of them. The command binaries share it.
package app

import (
	"context"
	"fmt"
	"time"

	"survey-analyst/internal/api"
	"survey-analyst/internal/common/config"
	"survey-analyst/internal/common/database"
	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/common/observability"
	"survey-analyst/internal/llm"
	"survey-analyst/internal/team"
)

// RetryPolicy bounds the connection attempts made at startup.
type RetryPolicy struct {
	Attempts     int
	InitialDelay time.Duration
}

var DefaultRetryPolicy = RetryPolicy{Attempts: 10, InitialDelay: 2 * time.Second}

// RetryWithBackoff runs operation until it succeeds, doubling the delay
// between attempts.
func RetryWithBackoff(ctx context.Context, policy RetryPolicy, log logger.Logger, operationName string, operation func(ctx context.Context) error) error {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	var err error
	delay := policy.InitialDelay

	for i := 0; i < policy.Attempts; i++ {
		err = operation(ctx)
		if err == nil {
			return nil
		}

		if i < policy.Attempts-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  policy.Attempts,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%s cancelled: %w", operationName, ctx.Err())
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, policy.Attempts, err)
}

// Backends holds the live connections. Optional backends are nil when
// disabled in configuration.
type Backends struct {
	SQL           *database.SQLClient
	Redis         *database.RedisClient
	Elasticsearch *database.ElasticsearchClient
	LLM           llm.Client
	Observability *observability.Observability

	logger logger.Logger
}

// Connect opens every configured backend, retrying each connection under
// policy. On failure the connections opened so far are closed.
func Connect(ctx context.Context, cfg *config.Config, policy RetryPolicy, log logger.Logger) (*Backends, error) {
	log = logger.Component(log, "bootstrap")
	b := &Backends{logger: log}

	err := RetryWithBackoff(ctx, policy, log, "survey database connection", func(ctx context.Context) error {
		client, err := database.Open(cfg.Database)
		if err != nil {
			return err
		}
		if err := client.Ping(ctx); err != nil {
			client.Close()
			return err
		}
		b.SQL = client
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("survey database connected", map[string]interface{}{"dialect": b.SQL.Dialect})

	if cfg.Database.Redis.Enabled {
		rdb := database.NewRedis(cfg.Database.Redis)
		if err := RetryWithBackoff(ctx, policy, log, "Redis connection", rdb.Ping); err != nil {
			rdb.Close()
			b.Close(ctx)
			return nil, err
		}
		b.Redis = rdb
		log.Info("Redis connected", map[string]interface{}{"address": cfg.Database.Redis.Address})
	}

	if cfg.Database.Elasticsearch.Enabled {
		var es *database.ElasticsearchClient
		err := RetryWithBackoff(ctx, policy, log, "Elasticsearch connection", func(ctx context.Context) error {
			client, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			if err := client.Ping(ctx); err != nil {
				return err
			}
			es = client
			return nil
		})
		if err != nil {
			b.Close(ctx)
			return nil, err
		}
		b.Elasticsearch = es
		log.Info("Elasticsearch connected", map[string]interface{}{"url": cfg.Database.Elasticsearch.GetURL()})
	}

	if cfg.LLM.Enabled {
		b.LLM = llm.NewOpenAIClient(llm.ConfigFromApp(cfg.LLM), log)
		log.Info("LLM client configured", map[string]interface{}{
			"model": cfg.LLM.Model,
			"host":  cfg.LLM.LLMHost(),
		})
	}

	serviceName := cfg.Observability.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}
	b.Observability = observability.New(observability.Options{
		ServiceName:    serviceName,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
	}, log)

	return b, nil
}

// Dependencies exposes the connections in the shape team.Assemble expects.
func (b *Backends) Dependencies() team.Dependencies {
	return team.Dependencies{
		SQL:           b.SQL,
		Redis:         b.Redis,
		Elasticsearch: b.Elasticsearch,
		LLM:           b.LLM,
		Observability: b.Observability,
	}
}

// Checks returns one readiness probe per connected backend.
func (b *Backends) Checks() map[string]api.Check {
	checks := map[string]api.Check{}
	if b.SQL != nil {
		checks["database"] = b.SQL.Ping
	}
	if b.Redis != nil {
		checks["redis"] = b.Redis.Ping
	}
	if b.Elasticsearch != nil {
		checks["elasticsearch"] = b.Elasticsearch.Ping
	}
	return checks
}

// Close releases every open connection.
func (b *Backends) Close(ctx context.Context) {
	if b.Observability != nil {
		b.Observability.Shutdown(ctx)
	}
	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			b.logger.Warn("closing Redis failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if b.SQL != nil {
		if err := b.SQL.Close(); err != nil {
			b.logger.Warn("closing survey database failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// BuildTeam connects the backends and assembles the team in one step.
func BuildTeam(ctx context.Context, cfg *config.Config, policy RetryPolicy, log logger.Logger) (*team.Team, *Backends, error) {
	backends, err := Connect(ctx, cfg, policy, log)
	if err != nil {
		return nil, nil, err
	}
	tm, err := team.Assemble(cfg, backends.Dependencies(), log)
	if err != nil {
		backends.Close(ctx)
		return nil, nil, err
	}
	return tm, backends, nil
}
