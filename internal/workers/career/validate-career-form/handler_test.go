package validatecareerform

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"career-predictor/internal/common/camunda/jobtest"
	"career-predictor/internal/common/config"
	"career-predictor/internal/common/errors"
	"career-predictor/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(&Config{Enabled: true, Timeout: 5 * time.Second}, logger.NewTestLogger(t))
}

func validForm() map[string]interface{} {
	return map[string]interface{}{
		"age": 21.0, "cgpa": "8.5", "risk": 5.0, "leadership": 6.0,
		"networking": 4.0, "tech": 9.0, "finance": 3.0, "siblings": 1.0,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(map[string]interface{})
		wantValid  bool
		wantErrors map[string]string
	}{
		{
			name:       "valid form",
			mutate:     func(map[string]interface{}) {},
			wantValid:  true,
			wantErrors: map[string]string{},
		},
		{
			name:       "missing field",
			mutate:     func(f map[string]interface{}) { delete(f, "tech") },
			wantErrors: map[string]string{"general": "All fields are required"},
		},
		{
			name:       "age out of range",
			mutate:     func(f map[string]interface{}) { f["age"] = 12.0 },
			wantErrors: map[string]string{"age": "Age must be 15-100"},
		},
		{
			name: "range and required together",
			mutate: func(f map[string]interface{}) {
				f["cgpa"] = "11"
				f["risk"] = nil
			},
			wantErrors: map[string]string{
				"cgpa":    "CGPA must be 0-10",
				"general": "All fields are required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			f := validForm()
			tt.mutate(f)

			out, err := h.Execute(context.Background(), &Input{SessionID: "s-1", Form: f})
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, out.IsValid)
			assert.Equal(t, tt.wantErrors, out.Errors)
		})
	}
}

func TestHandler_Execute_UnknownField(t *testing.T) {
	h := newTestHandler(t)
	f := validForm()
	f["height"] = 180.0

	_, err := h.Execute(context.Background(), &Input{Form: f})
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnknownField))
}

// ==========================
// Input Parsing Tests
// ==========================

func TestParseInput(t *testing.T) {
	in, err := parseInput(`{"sessionId":"s-9","form":{"age":30,"cgpa":"7"}}`)
	require.NoError(t, err)
	assert.Equal(t, "s-9", in.SessionID)
	assert.Equal(t, 30.0, in.Form["age"])

	_, err = parseInput(`{"sessionId":"s-9"}`)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))

	_, err = parseInput(`not json`)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig(&config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: false, Timeout: 1500},
	}})
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)

	cfg = LoadConfig(&config.Config{})
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestHandler_Execute_DoesNotLogRejectedForm(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := NewHandler(&Config{Enabled: true, Timeout: 5 * time.Second}, logger.NewZapAdapter(zap.New(core)))

	f := validForm()
	f["age"] = 12.0
	out, err := h.Execute(context.Background(), &Input{SessionID: "s-1", Form: f})
	require.NoError(t, err)
	assert.False(t, out.IsValid)
	assert.Zero(t, logs.Len())
}

// ==========================
// Job Handling Tests
// ==========================

func TestHandler_Handle_CompletesInvalidForm(t *testing.T) {
	client := jobtest.NewClient()
	h := newTestHandler(t)

	f := validForm()
	f["cgpa"] = "11"
	raw, err := json.Marshal(&Input{SessionID: "s-1", Form: f})
	require.NoError(t, err)

	h.Handle(client, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 3, Type: TaskType, Retries: 3, Variables: string(raw)}})

	calls := client.Gateway.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "CompleteJob", calls[0].Method)
	assert.JSONEq(t, `{"isValid":false,"errors":{"cgpa":"CGPA must be 0-10"}}`, calls[0].Variables)
	assert.NoError(t, calls[0].CtxErr)
}
