// internal/history/factory.go
package history

import (
	"fmt"

	"survey-analyst/internal/common/config"
	"survey-analyst/internal/common/database"
)

// NewSessionStore picks the configured session backend.
func NewSessionStore(cfg config.HistoryConfig, rdb *database.RedisClient) (SessionStore, error) {
	switch cfg.SessionBackend {
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("session backend redis requires a redis client")
		}
		return NewRedisSessionStore(rdb.Client, config.GetDuration(cfg.SessionTTL), cfg.MaxTurns), nil
	case "memory", "":
		return NewMemorySessionStore(cfg.MaxTurns), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}

// NewArchive returns an Elasticsearch archive when a client is available and
// a no-op archive otherwise.
func NewArchive(cfg config.HistoryConfig, es *database.ElasticsearchClient) Archive {
	if es == nil {
		return NopArchive{}
	}
	return NewElasticsearchArchive(es.Client, cfg.ArchiveIndex)
}
