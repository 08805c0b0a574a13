package shareprediction

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"career-predictor/internal/career/notify"
	"career-predictor/internal/career/share"
	"career-predictor/internal/common/errors"
	"career-predictor/internal/common/logger"
	"career-predictor/internal/common/metrics"
	"career-predictor/internal/common/validation"
)

const TaskType = "share-prediction"

// Dependencies holds the share targets. A worker has no clipboard, so with no
// native target every job fails with SHARE_FAILED.
type Dependencies struct {
	Native   share.NativeSharer
	Notifier notify.Notifier
}

type Handler struct {
	config       *Config
	deps         Dependencies
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	if deps.Notifier == nil {
		deps.Notifier = notify.NewLogNotifier(l)
	}
	return &Handler{
		config:       config,
		deps:         deps,
		logger:       l,
		errorHandler: errors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := parseInput(job.Variables)
	if err != nil {
		h.fail(client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func parseInput(variables string) (*Input, error) {
	schema, err := validation.Lookup(TaskType)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	res, err := schema.ValidateJSON(variables)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	if !res.Valid {
		// an empty prediction is a domain error, not malformed input
		if emptyPrediction(variables) {
			return nil, errors.NewNothingToShareError()
		}
		return nil, errors.NewInvalidInputError(strings.Join(res.Messages(), "; "))
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	return &input, nil
}

func emptyPrediction(variables string) bool {
	var peek struct {
		Prediction *string `json:"prediction"`
	}
	if err := json.Unmarshal([]byte(variables), &peek); err != nil {
		return false
	}
	return peek.Prediction == nil || strings.TrimSpace(*peek.Prediction) == ""
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	cfg := h.config.Share
	if input.URL != "" {
		cfg.URL = input.URL
	}

	action := share.NewAction(&cfg, h.deps.Native, nil, h.deps.Notifier, h.logger)
	outcome, err := action.Share(ctx, input.Prediction)
	if err != nil {
		return nil, err
	}

	h.logger.Info("prediction shared", map[string]interface{}{
		"sessionId": input.SessionID,
		"channel":   outcome.Channel,
	})

	return &Output{
		Shared:  true,
		Channel: string(outcome.Channel),
		Message: outcome.Message,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	ctx, cancel := errors.CommandContext()
	defer cancel()

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) fail(client worker.JobClient, job entities.Job, err error) {
	ctx, cancel := errors.CommandContext()
	defer cancel()

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.AsStandard(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
