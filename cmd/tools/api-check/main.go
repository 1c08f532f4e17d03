// cmd/tools/api-check/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"survey-analyst/internal/models"

	apihttp "survey-analyst/internal/common/http"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8000", "base URL of the API server")
	message := flag.String("message", "What is the average score for diagnostic 42?", "question posted to the team")
	timeout := flag.Duration("timeout", 60*time.Second, "per-request timeout")
	flag.Parse()

	client := apihttp.NewClient(*baseURL, *timeout)
	req := models.RunRequest{
		Message:   *message,
		UserID:    "test_user_123",
		SessionID: "test_session_456",
	}
	if err := check(context.Background(), client, req, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "api check failed: %v\n", err)
		os.Exit(1)
	}
}

// check probes /health and then posts one run. A non-200 run is reported but
// is not an error; the caller sees the status and body.
func check(ctx context.Context, client *apihttp.Client, req models.RunRequest, out io.Writer) error {
	health, err := client.Get(ctx, "/health")
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	fmt.Fprintf(out, "Health check: %d (%s)\n", health.StatusCode, health.Latency.Round(time.Millisecond))
	fmt.Fprintf(out, "  Response: %s\n", health.Body)

	fmt.Fprintf(out, "\nRunning team with query: %q\n", req.Message)
	run, err := client.PostJSON(ctx, "/v1/teams/run", req)
	if err != nil {
		return fmt.Errorf("team run: %w", err)
	}
	fmt.Fprintf(out, "Status code: %d\n", run.StatusCode)
	fmt.Fprintf(out, "Response time: %.2fs\n", run.Latency.Seconds())

	var resp models.RunResponse
	if run.StatusCode == 200 && run.Decode(&resp) == nil {
		fmt.Fprintf(out, "Status: %s\n", resp.Status)
		fmt.Fprintf(out, "Response: %s\n", resp.Response)
		return nil
	}
	fmt.Fprintf(out, "Error: %s\n", run.Body)
	return nil
}
