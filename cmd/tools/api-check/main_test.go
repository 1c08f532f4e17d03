package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-analyst/internal/models"

	apihttp "survey-analyst/internal/common/http"
)

func newAPI(t *testing.T, runStatus int) (*httptest.Server, *models.RunRequest) {
	t.Helper()
	var got models.RunRequest
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})
	mux.HandleFunc("POST /v1/teams/run", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(runStatus)
		if runStatus == http.StatusOK {
			_ = json.NewEncoder(w).Encode(models.RunResponse{Status: models.RunStatusCompleted, Response: "mean 4.10"})
			return
		}
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestCheck_Success(t *testing.T) {
	srv, got := newAPI(t, http.StatusOK)
	var out bytes.Buffer

	req := models.RunRequest{Message: "mean for diagnostic 42", UserID: "u", SessionID: "s"}
	err := check(context.Background(), apihttp.NewClient(srv.URL, 5*time.Second), req, &out)

	require.NoError(t, err)
	assert.Equal(t, req, *got)
	assert.Contains(t, out.String(), "Health check: 200")
	assert.Contains(t, out.String(), "Status: completed")
	assert.Contains(t, out.String(), "Response: mean 4.10")
}

func TestCheck_RunErrorIsReported(t *testing.T) {
	srv, _ := newAPI(t, http.StatusBadGateway)
	var out bytes.Buffer

	err := check(context.Background(), apihttp.NewClient(srv.URL, 5*time.Second), models.RunRequest{Message: "x"}, &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Status code: 502")
	assert.Contains(t, out.String(), `Error: {"error":"boom"}`)
}

func TestCheck_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := check(context.Background(), apihttp.NewClient(url, time.Second), models.RunRequest{Message: "x"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "health check")
}
