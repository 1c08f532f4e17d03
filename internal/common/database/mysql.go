// internal/common/database/mysql.go
package database

import (
	"database/sql"
	"fmt"
	"net/url"

	"survey-analyst/internal/common/config"

	"github.com/go-sql-driver/mysql"
)

// MySQLDSN builds a go-sql-driver DSN from config. Extra params are given in
// URL query form, e.g. "charset=utf8mb4&tls=preferred".
func MySQLDSN(cfg config.MySQLConfig) (string, error) {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.DBName = cfg.Database
	mc.ParseTime = true

	if cfg.Params != "" {
		values, err := url.ParseQuery(cfg.Params)
		if err != nil {
			return "", fmt.Errorf("invalid mysql params: %w", err)
		}
		mc.Params = make(map[string]string, len(values))
		for k := range values {
			mc.Params[k] = values.Get(k)
		}
	}
	return mc.FormatDSN(), nil
}

// NewMySQL creates a new MySQL client
func NewMySQL(cfg config.MySQLConfig) (*SQLClient, error) {
	dsn, err := MySQLDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}
	configurePool(db, cfg.MaxConnections, cfg.MaxIdle)
	return &SQLClient{DB: db, Dialect: DialectMySQL}, nil
}
