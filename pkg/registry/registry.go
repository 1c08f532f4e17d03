// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default is the built-in team used when no manifest file is configured.
func Default() *TeamManifest {
	return &TeamManifest{
		Version:     "1.0.0",
		LastUpdated: "2025-07-15T17:02:20Z",
		Team: Team{
			Name:        "Data Analyst agent",
			Description: "Orchestrates intent parsing, SQL generation, and result analysis.",
		},
		Members: []Member{
			{
				ID:          "intent-agent",
				Name:        "Intent agent",
				Description: "Extracts survey question metadata for NL2SQL.",
				Role:        RoleIntent,
				Tools:       []string{ToolListTables, ToolDescribeTable},
				TaskType:    "resolve-survey-intent",
				ErrorCodes:  []string{"INTROSPECTION_FAILED", "NO_MATCHING_TABLES", "AMBIGUOUS_VALUE_TYPE"},
				Timeout:     "10s",
			},
			{
				ID:          "nl2sql-agent",
				Name:        "NL2Sql Agent",
				Description: "Builds and runs the aggregate query for a resolved survey intent.",
				Role:        RoleNL2SQL,
				Tools:       []string{ToolListTables, ToolDescribeTable, ToolRunSQLQuery},
				TaskType:    "execute-survey-query",
				ErrorCodes:  []string{"QUERY_EXECUTION_FAILED", "QUERY_TIMEOUT", "INVALID_IDENTIFIER"},
				Timeout:     "30s",
				Retries:     2,
			},
			{
				ID:          "analysis-agent",
				Name:        "Analysis agent and chart generation",
				Description: "Summarises query results and produces a chart specification.",
				Role:        RoleAnalysis,
				Tools:       []string{},
				TaskType:    "analyze-survey-results",
				ErrorCodes:  []string{"MALFORMED_RESULT"},
				Timeout:     "60s",
			},
		},
	}
}

// LoadManifest reads a team manifest from a JSON file and validates it.
func LoadManifest(path string) (*TeamManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m TeamManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveManifest writes the manifest as indented JSON, stamping LastUpdated.
func SaveManifest(m *TeamManifest, path string) error {
	m.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}
	return nil
}

// Validate checks that the manifest names a team and exactly one member
// per pipeline role, with unique ids.
func (m *TeamManifest) Validate() error {
	if m.Team.Name == "" {
		return fmt.Errorf("manifest missing required field: team.name")
	}

	ids := make(map[string]bool)
	roles := make(map[string]bool)
	for _, member := range m.Members {
		if member.ID == "" {
			return fmt.Errorf("member missing required field: id")
		}
		if ids[member.ID] {
			return fmt.Errorf("duplicate member id: %s", member.ID)
		}
		ids[member.ID] = true

		if member.Name == "" {
			return fmt.Errorf("member %s missing required field: name", member.ID)
		}
		switch member.Role {
		case RoleIntent, RoleNL2SQL, RoleAnalysis:
		default:
			return fmt.Errorf("member %s has unknown role %q", member.ID, member.Role)
		}
		if roles[member.Role] {
			return fmt.Errorf("role %s is assigned to more than one member", member.Role)
		}
		roles[member.Role] = true
	}

	for _, role := range []string{RoleIntent, RoleNL2SQL, RoleAnalysis} {
		if !roles[role] {
			return fmt.Errorf("manifest has no %s member", role)
		}
	}
	return nil
}

// MemberByRole returns the member that fills role.
func (m *TeamManifest) MemberByRole(role string) (Member, bool) {
	for _, member := range m.Members {
		if member.Role == role {
			return member, true
		}
	}
	return Member{}, false
}

// MemberByID returns a pointer into Members so callers can edit in place.
func (m *TeamManifest) MemberByID(id string) *Member {
	for i := range m.Members {
		if m.Members[i].ID == id {
			return &m.Members[i]
		}
	}
	return nil
}
