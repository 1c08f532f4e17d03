package resolvesurveyintent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "survey-analyst/internal/common/errors"
	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/common/metrics"
	"survey-analyst/internal/intent"
	"survey-analyst/internal/models"
)

const (
	TaskType = "resolve-survey-intent"
)

var (
	ErrEmptyQuestion = errors.New("EMPTY_QUESTION")
)

var errorMappings = []commonerrors.Mapping{
	{Sentinel: ErrEmptyQuestion, Code: commonerrors.ErrCodeInvalidInput},
	{Sentinel: intent.ErrIntrospection, Code: commonerrors.ErrCodeIntrospectionFailed},
	{Sentinel: intent.ErrNoMatch, Code: commonerrors.ErrCodeNoMatchingTables},
	{Sentinel: intent.ErrAmbiguousType, Code: commonerrors.ErrCodeAmbiguousValueType},
	{Sentinel: intent.ErrInvalidIntent, Code: commonerrors.ErrCodeInvalidIntent},
}

// Resolver is satisfied by *intent.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, question string) (*models.IntentResult, error)
}

type Handler struct {
	config     *Config
	resolver   Resolver
	errHandler *commonerrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, resolver Resolver, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		resolver:   resolver,
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
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	res, err := h.resolver.Resolve(ctx, question)
	if err != nil {
		return nil, resolveFailure(question, err)
	}
	if res.Failed() {
		return nil, commonerrors.NewInvalidIntentError(fmt.Errorf("%w: %s", intent.ErrInvalidIntent, res.Error)).
			WithMetadata("question", question)
	}

	h.logger.Info("intent resolved", map[string]interface{}{
		"surveyType":   res.SurveyType,
		"questionType": res.QuestionType,
		"tables":       res.Tables,
	})

	return &Output{
		Intent:       res,
		SurveyType:   res.SurveyType,
		QuestionType: res.QuestionType,
		TableCount:   len(res.Tables),
	}, nil
}

// resolveFailure builds the job error for a resolver failure. The question
// travels with it into the process error variables.
func resolveFailure(question string, err error) error {
	var stdErr *commonerrors.StandardError
	switch {
	case errors.Is(err, intent.ErrIntrospection):
		stdErr = commonerrors.NewIntrospectionFailedError(err)
	case errors.Is(err, intent.ErrNoMatch):
		stdErr = commonerrors.NewNoMatchingTablesError(err)
	case errors.Is(err, intent.ErrAmbiguousType):
		stdErr = commonerrors.NewAmbiguousValueTypeError(err)
	default:
		return err
	}
	return stdErr.WithMetadata("question", question)
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
