// internal/introspection/factory.go
package introspection

import (
	"fmt"

	"survey-analyst/internal/common/config"
	"survey-analyst/internal/common/database"
	"survey-analyst/internal/common/logger"
)

// New builds the introspector selected by configuration. db may be nil for
// the snapshot source; rdb may be nil when caching is disabled.
func New(cfg *config.Config, db *database.SQLClient, rdb *database.RedisClient, log logger.Logger) (Introspector, error) {
	var src Introspector

	switch cfg.Introspection.Source {
	case "snapshot":
		snap, err := LoadSnapshot(cfg.Introspection.SnapshotPath)
		if err != nil {
			return nil, err
		}
		src = NewStaticIntrospector(snap)
	case "database", "":
		if db == nil {
			return nil, fmt.Errorf("introspection source database requires a database connection")
		}
		sqlSrc, err := NewSQLIntrospector(db.DB, db.Dialect, cfg.Introspection.Schema,
			config.GetDuration(cfg.Introspection.Timeout), log)
		if err != nil {
			return nil, err
		}
		src = sqlSrc
	default:
		return nil, fmt.Errorf("unknown introspection source %q", cfg.Introspection.Source)
	}

	if cfg.Introspection.CacheTTL > 0 && rdb != nil {
		src = NewCachedIntrospector(src, rdb.Client, config.GetDuration(cfg.Introspection.CacheTTL),
			cfg.Introspection.CachePrefix, log)
	}
	return src, nil
}
