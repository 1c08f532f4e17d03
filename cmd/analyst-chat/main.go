// cmd/analyst-chat/main.go
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"survey-analyst/internal/app"
	"survey-analyst/internal/common/config"
	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/models"
	"survey-analyst/pkg/registry"
)

var exitWords = map[string]bool{"exit": true, "quit": true, "bye": true, "q": true}

// teamRunner is the part of *team.Team the chat loop talks to.
type teamRunner interface {
	Name() string
	Members() []registry.Member
	Run(ctx context.Context, req models.RunRequest) (*models.RunResponse, error)
}

func main() {
	configPath := flag.String("config", "", "path to a config file (defaults to configs/config.yaml)")
	userID := flag.String("user", "cli-user", "user id recorded with each run")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	// Keep the console for the conversation; logs go to stderr at warn level
	// unless debug was asked for.
	level := "warn"
	if cfg.Team.DebugMode {
		level = "debug"
	}
	zapLog := logger.New(level, "console", "stderr")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tm, backends, err := app.BuildTeam(ctx, cfg, app.RetryPolicy{Attempts: 3, InitialDelay: app.DefaultRetryPolicy.InitialDelay}, log)
	if err != nil {
		zapLog.Fatal("team assembly failed", zap.Error(err))
	}
	defer backends.Close(context.Background())

	chat(ctx, tm, *userID, uuid.NewString(), os.Stdin, os.Stdout)
}

// chat reads questions line by line until an exit word, end of input or
// cancellation. A failed turn is reported and the session continues.
func chat(ctx context.Context, tm teamRunner, userID, sessionID string, in io.Reader, out io.Writer) {
	fmt.Fprintf(out, "%s\n", tm.Name())
	for _, m := range tm.Members() {
		fmt.Fprintf(out, "  - %s (%s): %s\n", m.Name, m.Role, m.Description)
	}
	fmt.Fprintf(out, "Session %s. Type exit, quit, bye or q to leave.\n", sessionID)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() || ctx.Err() != nil {
			fmt.Fprintln(out)
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if exitWords[strings.ToLower(line)] {
			fmt.Fprintln(out, "Goodbye.")
			return
		}

		resp, err := tm.Run(ctx, models.RunRequest{Message: line, UserID: userID, SessionID: sessionID})
		if resp != nil && resp.Response != "" {
			fmt.Fprintln(out, resp.Response)
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}
