// internal/team/team.go
package team

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/common/metrics"
	"survey-analyst/internal/common/observability"
	"survey-analyst/internal/history"
	"survey-analyst/internal/intent"
	"survey-analyst/internal/models"
	"survey-analyst/pkg/registry"
)

var (
	ErrEmptyMessage   = errors.New("EMPTY_MESSAGE")
	ErrQueryFailed    = errors.New("QUERY_FAILED")
	ErrAnalysisFailed = errors.New("ANALYSIS_FAILED")
)

// IntentResolver is the Intent agent.
type IntentResolver interface {
	Resolve(ctx context.Context, question string) (*models.IntentResult, error)
}

// QueryBuilder and QueryRunner together form the NL2Sql agent.
type QueryBuilder interface {
	Build(intent *models.IntentResult) (*models.Query, error)
}

type QueryRunner interface {
	Run(ctx context.Context, q *models.Query) (*models.QueryResult, error)
}

// ResultAnalyzer is the analysis and chart member.
type ResultAnalyzer interface {
	Analyze(ctx context.Context, question string, intent *models.IntentResult, result *models.QueryResult) (*models.Analysis, error)
}

type Options struct {
	Manifest      *registry.TeamManifest
	Resolver      IntentResolver
	Builder       QueryBuilder
	Runner        QueryRunner
	Analyzer      ResultAnalyzer
	Sessions      history.SessionStore
	Archive       history.Archive
	Observability *observability.Observability
	Timeout       time.Duration
	Logger        logger.Logger
}

// Team runs a question through intent resolution, SQL generation and
// analysis, in that order. It keeps no per-run state.
type Team struct {
	manifest *registry.TeamManifest
	intent   registry.Member
	nl2sql   registry.Member
	analysis registry.Member

	resolver IntentResolver
	builder  QueryBuilder
	runner   QueryRunner
	analyzer ResultAnalyzer
	sessions history.SessionStore
	archive  history.Archive
	obs      *observability.Observability
	timeout  time.Duration
	logger   logger.Logger
}

func New(opts Options) (*Team, error) {
	if opts.Resolver == nil || opts.Builder == nil || opts.Runner == nil || opts.Analyzer == nil {
		return nil, fmt.Errorf("team requires a resolver, builder, runner and analyzer")
	}
	manifest := opts.Manifest
	if manifest == nil {
		manifest = registry.Default()
	}
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid team manifest: %w", err)
	}

	t := &Team{
		manifest: manifest,
		resolver: opts.Resolver,
		builder:  opts.Builder,
		runner:   opts.Runner,
		analyzer: opts.Analyzer,
		sessions: opts.Sessions,
		archive:  opts.Archive,
		obs:      opts.Observability,
		timeout:  opts.Timeout,
		logger:   logger.Component(opts.Logger, "team"),
	}
	t.intent, _ = manifest.MemberByRole(registry.RoleIntent)
	t.nl2sql, _ = manifest.MemberByRole(registry.RoleNL2SQL)
	t.analysis, _ = manifest.MemberByRole(registry.RoleAnalysis)

	if t.sessions == nil {
		t.sessions = history.NewMemorySessionStore(0)
	}
	if t.archive == nil {
		t.archive = history.NopArchive{}
	}
	if t.obs == nil {
		t.obs = observability.NewNoop()
	}
	return t, nil
}

func (t *Team) Name() string        { return t.manifest.Team.Name }
func (t *Team) Description() string { return t.manifest.Team.Description }

// Members lists the members in pipeline order.
func (t *Team) Members() []registry.Member {
	return []registry.Member{t.intent, t.nl2sql, t.analysis}
}

// Stages are the member implementations, for front ends that run one stage
// at a time such as the Zeebe workers.
type Stages struct {
	Resolver IntentResolver
	Builder  QueryBuilder
	Runner   QueryRunner
	Analyzer ResultAnalyzer
}

func (t *Team) Stages() Stages {
	return Stages{Resolver: t.resolver, Builder: t.builder, Runner: t.runner, Analyzer: t.analyzer}
}

// ResolveIntent runs only the Intent agent.
func (t *Team) ResolveIntent(ctx context.Context, question string) (*models.IntentResult, error) {
	res, err := t.resolver.Resolve(ctx, question)
	recordIntentOutcome(res, err)
	return res, err
}

// History returns the recorded turns of a session.
func (t *Team) History(ctx context.Context, sessionID string) ([]models.Turn, error) {
	return t.sessions.History(ctx, sessionID)
}

// Run answers one question. A failed intent is not a Go error: the run ends
// with status intent_failed and the intent's error text as response. Query
// and analysis failures return both the partial response and an error.
func (t *Team) Run(ctx context.Context, req models.RunRequest) (*models.RunResponse, error) {
	question := strings.TrimSpace(req.Message)
	if question == "" {
		return nil, ErrEmptyMessage
	}

	resp := &models.RunResponse{
		RunID:     uuid.NewString(),
		UserID:    req.UserID,
		SessionID: req.SessionID,
		StartedAt: time.Now().UTC(),
	}
	if resp.UserID == "" {
		resp.UserID = uuid.NewString()
	}
	if resp.SessionID == "" {
		resp.SessionID = uuid.NewString()
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	ctx, span := t.obs.StartSpan(ctx, "team.run",
		attribute.String("run_id", resp.RunID),
		attribute.String("session_id", resp.SessionID),
	)
	defer span.End()

	log := t.logger.With(map[string]interface{}{
		"runId":     resp.RunID,
		"sessionId": resp.SessionID,
	})
	log.Info("Team run started", map[string]interface{}{"team": t.Name()})

	err := t.pipeline(ctx, question, resp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	t.finish(ctx, log, question, resp)
	return resp, err
}

func (t *Team) pipeline(ctx context.Context, question string, resp *models.RunResponse) error {
	// Intent agent
	var intentRes *models.IntentResult
	intentErr := t.stage(ctx, resp, t.intent, func(ctx context.Context) error {
		var err error
		intentRes, err = t.resolver.Resolve(ctx, question)
		recordIntentOutcome(intentRes, err)
		return err
	})
	if intentErr != nil && !intentRes.Failed() {
		intentRes = models.ErrorIntent(intentErr.Error())
	}
	resp.Intent = intentRes
	if intentErr != nil || intentRes.Failed() {
		resp.Status = models.RunStatusIntentFailed
		resp.Response = intentRes.Error
		t.skip(resp, t.nl2sql, t.analysis)
		return nil
	}

	// NL2Sql agent
	var result *models.QueryResult
	queryErr := t.stage(ctx, resp, t.nl2sql, func(ctx context.Context) error {
		q, err := t.builder.Build(intentRes)
		if err != nil {
			return err
		}
		resp.Query = q
		result, err = t.runner.Run(ctx, q)
		return err
	})
	if queryErr != nil {
		resp.Status = models.RunStatusQueryFailed
		resp.Response = "The survey query could not be completed: " + queryErr.Error()
		t.skip(resp, t.analysis)
		return fmt.Errorf("%w: %w", ErrQueryFailed, queryErr)
	}

	// Analysis agent and chart generation
	var analysis *models.Analysis
	analysisErr := t.stage(ctx, resp, t.analysis, func(ctx context.Context) error {
		var err error
		analysis, err = t.analyzer.Analyze(ctx, question, intentRes, result)
		return err
	})
	if analysisErr != nil {
		resp.Status = models.RunStatusAnalysisFailed
		resp.Response = "The survey results could not be analysed: " + analysisErr.Error()
		return fmt.Errorf("%w: %w", ErrAnalysisFailed, analysisErr)
	}

	resp.Analysis = analysis
	resp.Status = models.RunStatusCompleted
	resp.Response = analysis.Summary
	if analysis.Narrative != "" {
		resp.Response += "\n\n" + analysis.Narrative
	}
	return nil
}

// stage runs fn as one member's turn, with a span, metrics and a member
// record on the response.
func (t *Team) stage(ctx context.Context, resp *models.RunResponse, member registry.Member, fn func(ctx context.Context) error) error {
	ctx, span := t.obs.StartSpan(ctx, member.ID, attribute.String("member", member.Name))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	out := models.MemberOutput{Member: member.Name, Status: "ok", DurationMs: elapsed.Milliseconds()}
	if err != nil {
		out.Status = "failed"
		out.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	resp.Members = append(resp.Members, out)

	metrics.TeamStageDuration.WithLabelValues(member.Name, out.Status).Observe(elapsed.Seconds())
	t.obs.RecordStage(ctx, member.Name, elapsed, out.Status)
	return err
}

func (t *Team) skip(resp *models.RunResponse, members ...registry.Member) {
	for _, m := range members {
		resp.Members = append(resp.Members, models.MemberOutput{Member: m.Name, Status: "skipped"})
	}
}

// finish records the run. Session and archive failures are logged only.
func (t *Team) finish(ctx context.Context, log logger.Logger, question string, resp *models.RunResponse) {
	resp.DurationMs = time.Since(resp.StartedAt).Milliseconds()

	// a cancelled request still gets recorded
	recordCtx := context.WithoutCancel(ctx)

	if err := t.sessions.Append(recordCtx, resp.SessionID, models.TurnFromResponse(question, resp)); err != nil {
		log.Warn("Failed to record session turn", map[string]interface{}{"error": err})
	}
	if err := t.archive.Record(recordCtx, question, resp); err != nil {
		log.Warn("Failed to archive run", map[string]interface{}{"error": err})
	}

	metrics.TeamRunsTotal.WithLabelValues(string(resp.Status)).Inc()
	t.obs.RecordRun(recordCtx, string(resp.Status))

	log.Info("Team run finished", map[string]interface{}{
		"status":     resp.Status,
		"durationMs": resp.DurationMs,
	})
}

func recordIntentOutcome(res *models.IntentResult, err error) {
	outcome := "error"
	switch {
	case err != nil:
		for _, code := range []error{intent.ErrIntrospection, intent.ErrNoMatch, intent.ErrAmbiguousType} {
			if errors.Is(err, code) {
				outcome = code.Error()
				break
			}
		}
	case res != nil && !res.Failed():
		outcome = string(res.SurveyType)
	}
	metrics.IntentResolutions.WithLabelValues(outcome).Inc()
}
