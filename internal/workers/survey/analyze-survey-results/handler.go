package analyzesurveyresults

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"survey-analyst/internal/analysis"
	commonerrors "survey-analyst/internal/common/errors"
	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/common/metrics"
	"survey-analyst/internal/models"
)

const (
	TaskType = "analyze-survey-results"
)

var errorMappings = []commonerrors.Mapping{
	{Sentinel: analysis.ErrMalformedResult, Code: commonerrors.ErrCodeMalformedResult},
}

type Analyzer interface {
	Analyze(ctx context.Context, question string, intent *models.IntentResult, result *models.QueryResult) (*models.Analysis, error)
}

type Handler struct {
	config     *Config
	analyzer   Analyzer
	errHandler *commonerrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, analyzer Analyzer, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		analyzer:   analyzer,
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
	if input.Intent == nil || input.QueryResult == nil {
		return nil, commonerrors.NewInvalidInputError("intent and queryResult are required")
	}

	result, err := h.analyzer.Analyze(ctx, input.Question, input.Intent, input.QueryResult)
	if err != nil {
		if errors.Is(err, analysis.ErrMalformedResult) {
			return nil, commonerrors.NewMalformedResultError(err).
				WithMetadata("rowCount", input.QueryResult.RowCount)
		}
		return nil, err
	}

	response := result.Summary
	if result.Narrative != "" {
		response += "\n\n" + result.Narrative
	}

	h.logger.Info("survey results analyzed", map[string]interface{}{
		"questionType": result.QuestionType,
		"responses":    result.Overall.Responses,
		"narrative":    result.Narrative != "",
	})

	return &Output{Analysis: result, Response: response}, nil
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
