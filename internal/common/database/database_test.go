package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-analyst/internal/common/config"
)

func TestMySQLDSN(t *testing.T) {
	dsn, err := MySQLDSN(config.MySQLConfig{
		Host: "db", Port: 3306, User: "analyst", Password: "pw", Database: "surveys",
		Params: "charset=utf8mb4",
	})
	require.NoError(t, err)
	assert.Contains(t, dsn, "analyst:pw@tcp(db:3306)/surveys?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestMySQLDSN_BadParams(t *testing.T) {
	_, err := MySQLDSN(config.MySQLConfig{Host: "db", Port: 3306, Params: "%zz"})
	assert.Error(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestOpen_SelectsDialect(t *testing.T) {
	pg, err := Open(config.DatabaseConfig{Postgres: config.PostgresConfig{URL: "postgres://u@localhost/db"}})
	require.NoError(t, err)
	defer pg.Close()
	assert.Equal(t, DialectPostgres, pg.Dialect)

	my, err := Open(config.DatabaseConfig{Driver: "mysql", MySQL: config.MySQLConfig{Host: "localhost", Port: 3306}})
	require.NoError(t, err)
	defer my.Close()
	assert.Equal(t, DialectMySQL, my.Dialect)
}

func TestSQLClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	mock.ExpectClose()

	c := &SQLClient{DB: db, Dialect: DialectPostgres}
	assert.NoError(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer c.Close()
	assert.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestElasticsearchClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)
	assert.NoError(t, c.Ping(context.Background()))
}
