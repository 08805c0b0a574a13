package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"career-predictor/internal/common/camunda/jobtest"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantRetries int
		wantRetry   bool
	}{
		{"validation is thrown", NewValidationFailedError(map[string]string{"age": "Age must be 15-100"}), 0, false},
		{"prediction failure retries", NewPredictionFailedError(fmt.Errorf("boom")), 3, true},
		{"timeout retries", NewPredictionTimeoutError(context.DeadlineExceeded), 3, true},
		{"locked session retries longer", NewSessionLockedError("s-1"), 5, true},
		{"nothing to share is thrown", NewNothingToShareError(), 0, false},
		{"internal is thrown", NewInternalError(fmt.Errorf("nil map")), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, string(tt.err.Code), bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			assert.Equal(t, tt.wantRetry, bpmn.Retryable)
			assert.Equal(t, tt.wantRetries > 0, IsRetryableErrorCode(tt.err.Code))
		})
	}
}

func TestValidationFailed_CarriesFieldErrors(t *testing.T) {
	fields := map[string]string{"cgpa": "CGPA must be 0-10", "age": "Age must be 15-100"}
	err := NewValidationFailedError(fields)

	assert.Equal(t, "fields: age,cgpa", err.Details)
	assert.Equal(t, fields, err.Metadata["errors"])

	vars := ConvertToBPMNError(err).ToErrorVariables()
	assert.Equal(t, "CAREER_VALIDATION_FAILED", vars["errorCode"])
	assert.Equal(t, fields, vars["errors"])
	assert.Equal(t, false, vars["retryable"])
}

func TestAsStandardAndHasCode(t *testing.T) {
	cause := context.DeadlineExceeded
	wrapped := fmt.Errorf("predict: %w", NewPredictionTimeoutError(cause))

	assert.True(t, HasCode(wrapped, ErrCodePredictionTimeout))
	assert.False(t, HasCode(wrapped, ErrCodePredictionFailed))
	assert.False(t, HasCode(fmt.Errorf("plain"), ErrCodeInternal))
	assert.True(t, stderrors.Is(wrapped, cause))

	std := AsStandard(wrapped)
	require.NotNil(t, std)
	assert.Equal(t, ErrCodePredictionTimeout, std.Code)

	internal := AsStandard(fmt.Errorf("plain"))
	assert.Equal(t, ErrCodeInternal, internal.Code)
	assert.Nil(t, AsStandard(nil))
}

func TestSentinels(t *testing.T) {
	err := fmt.Errorf("submit: %w", NewSubmissionInProgressError("sub-1"))
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	assert.NotErrorIs(t, err, ErrSessionLocked)
	assert.ErrorIs(t, NewShareFailedError("sns", fmt.Errorf("throttled")), ErrShareFailed)
}

func TestGetErrorCategory(t *testing.T) {
	cases := map[ErrorCode]string{
		ErrCodeUnknownField:         "validation",
		ErrCodeSessionLocked:        "concurrency",
		ErrCodeCatalogUnavailable:   "prediction",
		ErrCodeShareFailed:          "share",
		ErrCodeTimeout:              "external",
		ErrCodeAuthenticationFailed: "auth",
		ErrorCode("SOMETHING_ELSE"): "internal",
	}
	for code, want := range cases {
		assert.Equal(t, want, GetErrorCategory(code), code)
	}
}

func TestStandardError_Message(t *testing.T) {
	assert.Equal(t, "StandardError[NOTHING_TO_SHARE]: No prediction to share", NewNothingToShareError().Error())
	assert.Equal(t, "StandardError[UNKNOWN_FIELD]: Unknown form field: field: height", NewUnknownFieldError("height").Error())
}

func TestRetriesFor(t *testing.T) {
	job := func(retries int32) entities.Job {
		return entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: retries}}
	}

	assert.Equal(t, int32(2), retriesFor(job(3), 3))
	assert.Equal(t, int32(2), retriesFor(job(10), 3), "capped at the budget")
	assert.Equal(t, int32(0), retriesFor(job(1), 5))
	assert.Equal(t, int32(0), retriesFor(job(0), 5))
}

type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) Error(msg string, _ map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *recordingLogger) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

func testJob(retries int32) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, Type: "predict-career", Retries: retries}}
}

func TestHandleJobError_FailsRetryable(t *testing.T) {
	client := jobtest.NewClient()
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	ctx, cancel := CommandContext()
	defer cancel()
	h.HandleJobError(ctx, client, testJob(5), NewPredictionFailedError(stderrors.New("model offline")))

	calls := client.Gateway.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "FailJob", calls[0].Method)
	assert.Equal(t, int64(42), calls[0].JobKey)
	assert.Equal(t, int32(2), calls[0].Retries)
	assert.Contains(t, calls[0].Variables, string(ErrCodePredictionFailed))
	assert.NoError(t, calls[0].CtxErr)
	assert.Equal(t, []string{"Job failed"}, log.all())
}

func TestHandleJobError_ThrowsWhenNoRetries(t *testing.T) {
	client := jobtest.NewClient()
	h := NewErrorHandler(&recordingLogger{})

	h.HandleJobError(context.Background(), client, testJob(0), NewPredictionFailedError(stderrors.New("model offline")))

	calls := client.Gateway.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "ThrowError", calls[0].Method)
	assert.Equal(t, string(ErrCodePredictionFailed), calls[0].ErrorCode)
}

func TestHandleJobError_LogsSendFailure(t *testing.T) {
	client := jobtest.NewClient()
	client.Gateway.Err = stderrors.New("gateway unavailable")
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	h.HandleJobError(context.Background(), client, testJob(3), NewInvalidInputError("bad form"))

	require.Len(t, client.Gateway.Calls(), 1)
	assert.Equal(t, []string{"Job failed", "failed to throw error command"}, log.all())
}

func TestCommandContext_Detached(t *testing.T) {
	ctx, cancel := CommandContext()
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(CommandTimeout), deadline, time.Second)
}
