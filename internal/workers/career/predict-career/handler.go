package predictcareer

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"career-predictor/internal/career/form"
	"career-predictor/internal/career/guard"
	"career-predictor/internal/career/lifecycle"
	"career-predictor/internal/career/notify"
	"career-predictor/internal/career/predictor"
	"career-predictor/internal/common/errors"
	"career-predictor/internal/common/logger"
	"career-predictor/internal/common/metrics"
	"career-predictor/internal/common/validation"
)

const TaskType = "predict-career"

// Dependencies are shared across jobs. Lock may be nil, in which case
// submissions for the same session are not serialized.
type Dependencies struct {
	Predictor predictor.Predictor
	Notifier  notify.Notifier
	Lock      *guard.Lock
}

// Handler runs one full submission per job: fill the form, validate, predict.
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
		"retries":            job.Retries,
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
		return nil, errors.NewInvalidInputError(strings.Join(res.Messages(), "; "))
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	return &input, nil
}

// Execute holds the session lock for the length of the submission. A form
// that fails validation returns CAREER_VALIDATION_FAILED with the field
// messages in the error metadata.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	values, err := form.ValuesFromVariables(input.Form)
	if err != nil {
		return nil, err
	}

	if h.deps.Lock != nil {
		release, err := h.deps.Lock.Acquire(ctx, input.SessionID)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				h.logger.Warn("failed to release session lock", map[string]interface{}{
					"sessionId": input.SessionID,
					"error":     err.Error(),
				})
			}
		}()
	}

	ctrl := lifecycle.NewController(h.config.Lifecycle, h.deps.Predictor, h.deps.Notifier, notify.Nop{}, h.logger)
	for _, f := range form.Fields() {
		if err := ctrl.SetField(string(f), values[f]); err != nil {
			return nil, err
		}
	}

	result, err := ctrl.Submit(ctx)
	if err != nil {
		return nil, err
	}

	h.logger.Info("prediction completed", map[string]interface{}{
		"sessionId":    input.SessionID,
		"submissionId": result.SubmissionID,
		"prediction":   result.Label,
	})

	return &Output{
		SubmissionID: result.SubmissionID,
		Prediction:   string(result.Label),
		Status:       string(result.State),
		DurationMs:   result.Duration.Milliseconds(),
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
