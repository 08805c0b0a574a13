package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"career-predictor/internal/common/logger"
)

// ==========================
// Mock Implementations
// ==========================

type MockSNSService struct {
	mu          sync.Mutex
	inputs      []*sns.PublishInput
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, params)
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, params, optFns...)
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func (m *MockSNSService) Inputs() []*sns.PublishInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*sns.PublishInput(nil), m.inputs...)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

// ==========================
// Func / Multi
// ==========================

func TestFunc_BuildsNotifications(t *testing.T) {
	var got []Notification
	n := Func(func(note Notification) { got = append(got, note) })

	n.Success("Prediction successful! 🎉", 2*time.Second)
	n.Error("Prediction failed. Try again!")
	n.Info("Copied to clipboard!")
	n.Success("Shared successfully!", 0)

	require.Len(t, got, 4)
	assert.Equal(t, LevelSuccess, got[0].Level)
	assert.Equal(t, 2*time.Second, got[0].AutoClose)
	assert.Equal(t, LevelError, got[1].Level)
	assert.Equal(t, DefaultAutoClose, got[1].AutoClose)
	assert.Equal(t, LevelInfo, got[2].Level)
	assert.Equal(t, "Copied to clipboard!", got[2].Message)
	assert.Equal(t, DefaultAutoClose, got[3].AutoClose)
	assert.NotEmpty(t, got[0].ID)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestMulti_FansOut(t *testing.T) {
	var a, b []Level
	m := Multi{
		Func(func(n Notification) { a = append(a, n.Level) }),
		Func(func(n Notification) { b = append(b, n.Level) }),
	}

	m.Success("ok", time.Second)
	m.Error("bad")
	m.Info("fyi")

	want := []Level{LevelSuccess, LevelError, LevelInfo}
	assert.Equal(t, want, a)
	assert.Equal(t, want, b)
}

func TestLogNotifier_DoesNotPanic(t *testing.T) {
	n := NewLogNotifier(logger.NewTestLogger(t))

	assert.NotPanics(t, func() {
		n.Success("Prediction successful! 🎉", 2*time.Second)
		n.Error("Prediction failed. Try again!")
		n.Info("Copied to clipboard!")
	})
}

// ==========================
// SNS
// ==========================

func TestSNSNotifier_PublishesJSON(t *testing.T) {
	mock := &MockSNSService{}
	n := NewSNSNotifier(mock, "arn:aws:sns:us-east-1:123:toasts", logger.NewNoOpLogger())

	n.Success("Prediction successful! 🎉", 2*time.Second)
	n.Flush()

	inputs := mock.Inputs()
	require.Len(t, inputs, 1)
	assert.Equal(t, "arn:aws:sns:us-east-1:123:toasts", aws.ToString(inputs[0].TopicArn))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(inputs[0].Message)), &body))
	assert.Equal(t, "success", body["level"])
	assert.Equal(t, "Prediction successful! 🎉", body["message"])
	assert.Equal(t, float64(2000), body["autoCloseMs"])
	assert.NotEmpty(t, body["id"])
}

func TestSNSNotifier_FailureIsSwallowed(t *testing.T) {
	mock := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("throttled")
		},
	}
	n := NewSNSNotifier(mock, "arn:topic", logger.NewNoOpLogger())

	assert.NotPanics(t, func() {
		n.Error("Prediction failed. Try again!")
		n.Flush()
	})
	assert.Len(t, mock.Inputs(), 1)
}

// ==========================
// Sound
// ==========================

func TestBell(t *testing.T) {
	var buf bytes.Buffer
	b := NewBell(&buf)

	require.NoError(t, b.Play(ClipClick))
	require.NoError(t, b.Play(ClipSuccess))

	assert.Equal(t, "\a\a\a", buf.String())
}

func TestBell_WriteError(t *testing.T) {
	assert.Error(t, NewBell(failingWriter{}).Play(ClipClick))
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Play(ClipSuccess))
}
