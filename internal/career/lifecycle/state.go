// Package lifecycle drives a career form submission from validation through
// the prediction call to settlement.
package lifecycle

import (
	"time"

	"career-predictor/internal/career/form"
	"career-predictor/internal/career/predictor"
	"career-predictor/internal/common/config"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateInProgress State = "in_progress"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

const (
	MsgSuccess = "Prediction successful! 🎉"
	MsgFailure = "Prediction failed. Try again!"
)

type Config struct {
	ProgressInterval time.Duration
	ProgressStep     int
	ProgressCap      int
	SettleDelay      time.Duration
	SuccessAutoClose time.Duration
}

// DefaultConfig mirrors the timings users are used to from the web form.
func DefaultConfig() *Config {
	return &Config{
		ProgressInterval: 500 * time.Millisecond,
		ProgressStep:     10,
		ProgressCap:      90,
		SettleDelay:      500 * time.Millisecond,
		SuccessAutoClose: 2000 * time.Millisecond,
	}
}

// ConfigFrom converts the millisecond settings of the lifecycle section.
func ConfigFrom(c config.LifecycleConfig) *Config {
	return &Config{
		ProgressInterval: config.GetDuration(c.ProgressInterval),
		ProgressStep:     c.ProgressStep,
		ProgressCap:      c.ProgressCap,
		SettleDelay:      config.GetDuration(c.SettleDelay),
		SuccessAutoClose: config.GetDuration(c.SuccessAutoClose),
	}
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	State        State
	Progress     int
	Values       form.Values
	Errors       form.Errors
	Prediction   predictor.Label
	SubmissionID string
}

// Busy reports whether inputs should be disabled.
func (s Snapshot) Busy() bool {
	return s.State != StateIdle
}

// Result describes one finished submission.
type Result struct {
	SubmissionID string
	State        State
	Label        predictor.Label
	Err          error
	Duration     time.Duration
}
