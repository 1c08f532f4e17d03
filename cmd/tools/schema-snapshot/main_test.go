package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-analyst/internal/introspection"
	"survey-analyst/internal/models"
)

func TestWriteSnapshot_RoundTrips(t *testing.T) {
	src := introspection.NewStaticIntrospector(models.SchemaSnapshot{Tables: []models.TableSchema{
		{Name: "rating_data", Columns: []models.Column{{Name: "diagnostic_id", Type: "integer"}, {Name: "value", Type: "integer"}}},
		{Name: "users", Columns: []models.Column{{Name: "id", Type: "integer"}}},
		{Name: "feedback_data", Columns: []models.Column{{Name: "diagnostic_id", Type: "integer"}, {Name: "value", Type: "text"}}},
	}})
	path := filepath.Join(t.TempDir(), "snapshot.yaml")

	count, err := writeSnapshot(context.Background(), src, "_data", path)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	loaded, err := introspection.LoadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, loaded.Tables, 2)
	assert.Equal(t, "feedback_data", loaded.Tables[0].Name)
	assert.Equal(t, "rating_data", loaded.Tables[1].Name)
	assert.Equal(t, "text", loaded.Tables[0].Columns[1].Type)
}

func TestWriteSnapshot_BadPath(t *testing.T) {
	src := introspection.NewStaticIntrospector(models.SchemaSnapshot{})
	_, err := writeSnapshot(context.Background(), src, "_data", filepath.Join(t.TempDir(), "missing", "snap.yaml"))
	assert.Error(t, err)
}
