// internal/team/assemble.go
package team

import (
	"fmt"

	"survey-analyst/internal/analysis"
	"survey-analyst/internal/common/config"
	"survey-analyst/internal/common/database"
	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/common/observability"
	"survey-analyst/internal/history"
	"survey-analyst/internal/intent"
	"survey-analyst/internal/introspection"
	"survey-analyst/internal/llm"
	"survey-analyst/internal/sqlgen"
	"survey-analyst/pkg/registry"
)

// Dependencies are the connections the team is built on. SQL is required;
// the rest are optional.
type Dependencies struct {
	SQL           *database.SQLClient
	Redis         *database.RedisClient
	Elasticsearch *database.ElasticsearchClient
	LLM           llm.Client
	Observability *observability.Observability
}

// Assemble builds the team described by configuration.
func Assemble(cfg *config.Config, deps Dependencies, log logger.Logger) (*Team, error) {
	if deps.SQL == nil {
		return nil, fmt.Errorf("team requires a survey database connection")
	}

	manifest := registry.Default()
	if cfg.Team.ManifestPath != "" {
		m, err := registry.LoadManifest(cfg.Team.ManifestPath)
		if err != nil {
			return nil, fmt.Errorf("load team manifest: %w", err)
		}
		manifest = m
	}

	src, err := introspection.New(cfg, deps.SQL, deps.Redis, log)
	if err != nil {
		return nil, err
	}

	builder, err := sqlgen.NewBuilder(deps.SQL.Dialect, cfg.Intent.IdentifierColumn, cfg.Intent.ValueColumn)
	if err != nil {
		return nil, err
	}

	sessions, err := history.NewSessionStore(cfg.History, deps.Redis)
	if err != nil {
		return nil, err
	}

	var narrator llm.Client
	if cfg.Analysis.Narrative && deps.LLM != nil {
		narrator = deps.LLM
	}

	return New(Options{
		Manifest:      manifest,
		Resolver:      intent.NewResolver(intent.FromAppConfig(cfg), src, log),
		Builder:       builder,
		Runner:        sqlgen.NewExecutor(deps.SQL.DB, config.GetDuration(cfg.Analysis.QueryTimeout), cfg.Analysis.MaxRows, log),
		Analyzer:      analysis.NewAnalyzer(narrator, log),
		Sessions:      sessions,
		Archive:       history.NewArchive(cfg.History, deps.Elasticsearch),
		Observability: deps.Observability,
		Timeout:       config.GetDuration(cfg.Team.Timeout),
		Logger:        log,
	})
}
