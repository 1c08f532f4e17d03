package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	m := Default()
	require.NoError(t, m.Validate())

	intent, ok := m.MemberByRole(RoleIntent)
	require.True(t, ok)
	assert.Equal(t, "Intent agent", intent.Name)
	assert.Equal(t, "Extracts survey question metadata for NL2SQL.", intent.Description)
	assert.NotContains(t, intent.Tools, ToolRunSQLQuery)

	nl2sql, _ := m.MemberByRole(RoleNL2SQL)
	assert.Contains(t, nl2sql.Tools, ToolRunSQLQuery)
}

func TestSaveAndLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "team.json")
	m := Default()
	m.MemberByID("analysis-agent").Timeout = "90s"

	require.NoError(t, SaveManifest(m, path))
	loaded, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "90s", loaded.MemberByID("analysis-agent").Timeout)
	assert.NotEqual(t, "2025-07-15T17:02:20Z", loaded.LastUpdated)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *TeamManifest)
		wantErr string
	}{
		{"no team name", func(m *TeamManifest) { m.Team.Name = "" }, "team.name"},
		{"duplicate id", func(m *TeamManifest) { m.Members[1].ID = m.Members[0].ID }, "duplicate member id"},
		{"unknown role", func(m *TeamManifest) { m.Members[2].Role = "critic" }, "unknown role"},
		{"missing role", func(m *TeamManifest) { m.Members = m.Members[:2] }, "no analysis member"},
		{"duplicate role", func(m *TeamManifest) { m.Members[1].Role = RoleIntent }, "more than one member"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Default()
			tt.mutate(m)
			err := m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadManifest_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "team.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"team":{"name":"x"},"members":[]}`), 0o600))
	_, err := LoadManifest(path)
	assert.Error(t, err)

	_, err = LoadManifest(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))
}
