// internal/introspection/cache.go
package introspection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/common/metrics"
	"survey-analyst/internal/models"
)

// CachedIntrospector puts a Redis cache-aside layer in front of another
// Introspector. Redis failures degrade to the backend; backend errors are
// never cached.
type CachedIntrospector struct {
	next   Introspector
	redis  redis.Cmdable
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

func NewCachedIntrospector(next Introspector, rdb redis.Cmdable, ttl time.Duration, prefix string, log logger.Logger) *CachedIntrospector {
	if prefix == "" {
		prefix = "analyst:schema"
	}
	return &CachedIntrospector{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		prefix: prefix,
		logger: logger.Component(log, "schema-cache"),
	}
}

func (c *CachedIntrospector) tablesKey() string {
	return c.prefix + ":tables"
}

func (c *CachedIntrospector) tableKey(table string) string {
	return fmt.Sprintf("%s:table:%s", c.prefix, table)
}

func (c *CachedIntrospector) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	if c.get(ctx, c.tablesKey(), &tables) {
		return tables, nil
	}

	tables, err := c.next.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, c.tablesKey(), tables)
	return tables, nil
}

func (c *CachedIntrospector) DescribeTable(ctx context.Context, table string) ([]models.Column, error) {
	var cols []models.Column
	if c.get(ctx, c.tableKey(table), &cols) {
		return cols, nil
	}

	cols, err := c.next.DescribeTable(ctx, table)
	if err != nil {
		return nil, err
	}
	c.set(ctx, c.tableKey(table), cols)
	return cols, nil
}

func (c *CachedIntrospector) get(ctx context.Context, key string, dest interface{}) bool {
	cached, err := c.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		metrics.SchemaCacheRequests.WithLabelValues("miss").Inc()
		return false
	}
	if err != nil {
		metrics.SchemaCacheRequests.WithLabelValues("error").Inc()
		c.logger.Warn("Schema cache read failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		return false
	}
	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		metrics.SchemaCacheRequests.WithLabelValues("error").Inc()
		c.logger.Warn("Discarding corrupt schema cache entry", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		return false
	}
	metrics.SchemaCacheRequests.WithLabelValues("hit").Inc()
	return true
}

func (c *CachedIntrospector) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Schema cache write failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
}
