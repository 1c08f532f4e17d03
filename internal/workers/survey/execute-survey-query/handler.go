package executesurveyquery

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "survey-analyst/internal/common/errors"
	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/common/metrics"
	"survey-analyst/internal/models"
	"survey-analyst/internal/sqlgen"
)

const (
	TaskType = "execute-survey-query"
)

var (
	ErrMissingIntent = errors.New("MISSING_INTENT")
)

var errorMappings = []commonerrors.Mapping{
	{Sentinel: ErrMissingIntent, Code: commonerrors.ErrCodeInvalidInput},
	{Sentinel: sqlgen.ErrIntentFailed, Code: commonerrors.ErrCodeInvalidIntent},
	{Sentinel: sqlgen.ErrInvalidIdentifier, Code: commonerrors.ErrCodeInvalidIdentifier},
	{Sentinel: sqlgen.ErrUnsupportedIntent, Code: commonerrors.ErrCodeUnsupportedIntent},
	{Sentinel: sqlgen.ErrQueryTimeout, Code: commonerrors.ErrCodeQueryTimeout},
	{Sentinel: sqlgen.ErrTooManyRows, Code: commonerrors.ErrCodeTooManyRows},
	{Sentinel: sqlgen.ErrQueryExecutionFailed, Code: commonerrors.ErrCodeQueryExecutionFailed},
}

type Builder interface {
	Build(intent *models.IntentResult) (*models.Query, error)
}

type Runner interface {
	Run(ctx context.Context, q *models.Query) (*models.QueryResult, error)
}

type Handler struct {
	config     *Config
	builder    Builder
	runner     Runner
	errHandler *commonerrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, builder Builder, runner Runner, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		builder:    builder,
		runner:     runner,
		errHandler: commonerrors.NewErrorHandler(log, errorMappings...),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, commonerrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Intent == nil {
		return nil, ErrMissingIntent
	}

	query, err := h.builder.Build(input.Intent)
	if err != nil {
		return nil, buildFailure(err)
	}

	result, err := h.runner.Run(ctx, query)
	if err != nil {
		return nil, queryFailure(query, err)
	}

	h.logger.Info("survey query executed", map[string]interface{}{
		"questionType":    query.QuestionType,
		"tables":          query.Tables,
		"rowCount":        result.RowCount,
		"executionTimeMs": result.QueryExecutionTime,
	})

	return &Output{QueryResult: result, RowCount: result.RowCount}, nil
}

func buildFailure(err error) error {
	switch {
	case errors.Is(err, sqlgen.ErrIntentFailed):
		return commonerrors.NewInvalidIntentError(err)
	case errors.Is(err, sqlgen.ErrInvalidIdentifier):
		return commonerrors.NewInvalidIdentifierError(err)
	}
	return err
}

// queryFailure tags execution errors with the question type. A dropped
// connection is reported separately from a failing statement.
func queryFailure(query *models.Query, err error) error {
	questionType := string(query.QuestionType)
	switch {
	case errors.Is(err, driver.ErrBadConn):
		return commonerrors.NewDatabaseConnectionFailedError(err).
			WithMetadata("questionType", questionType)
	case errors.Is(err, sqlgen.ErrQueryTimeout):
		return commonerrors.NewQueryTimeoutError(questionType, err)
	case errors.Is(err, sqlgen.ErrQueryExecutionFailed):
		return commonerrors.NewQueryExecutionFailedError(questionType, err)
	}
	return err
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	bpmnErr := h.errHandler.HandleJobError(context.WithoutCancel(ctx), client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
