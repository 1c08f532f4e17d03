package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-analyst/internal/models"
	"survey-analyst/pkg/registry"
)

type scriptedTeam struct {
	asked []models.RunRequest
	fail  map[string]error
}

func (s *scriptedTeam) Name() string { return "Survey Analysis Team" }

func (s *scriptedTeam) Members() []registry.Member {
	return []registry.Member{{Name: "Intent Agent", Role: "intent", Description: "resolves survey questions"}}
}

func (s *scriptedTeam) Run(_ context.Context, req models.RunRequest) (*models.RunResponse, error) {
	s.asked = append(s.asked, req)
	if err := s.fail[req.Message]; err != nil {
		return &models.RunResponse{Status: models.RunStatusIntentFailed, Response: "could not resolve"}, err
	}
	return &models.RunResponse{Status: models.RunStatusCompleted, Response: "answer to " + req.Message}, nil
}

func TestChat_RunsUntilExitWord(t *testing.T) {
	tm := &scriptedTeam{}
	in := strings.NewReader("\n   \nmean score for diagnostic 42?\nQUIT\nnever asked\n")
	var out bytes.Buffer

	chat(context.Background(), tm, "u1", "s1", in, &out)

	require.Len(t, tm.asked, 1)
	assert.Equal(t, models.RunRequest{Message: "mean score for diagnostic 42?", UserID: "u1", SessionID: "s1"}, tm.asked[0])
	assert.Contains(t, out.String(), "Intent Agent (intent)")
	assert.Contains(t, out.String(), "answer to mean score for diagnostic 42?")
	assert.Contains(t, out.String(), "Goodbye.")
}

func TestChat_ErrorDoesNotEndSession(t *testing.T) {
	tm := &scriptedTeam{fail: map[string]error{"bad": errors.New("no matching tables")}}
	in := strings.NewReader("bad\ngood\n")
	var out bytes.Buffer

	chat(context.Background(), tm, "u1", "s1", in, &out)

	require.Len(t, tm.asked, 2)
	assert.Contains(t, out.String(), "error: no matching tables")
	assert.Contains(t, out.String(), "answer to good")
}

func TestChat_StopsAtEOF(t *testing.T) {
	tm := &scriptedTeam{}
	var out bytes.Buffer

	chat(context.Background(), tm, "u1", "s1", strings.NewReader(""), &out)

	assert.Empty(t, tm.asked)
	assert.NotContains(t, out.String(), "Goodbye.")
}
