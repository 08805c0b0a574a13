package lifecycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"career-predictor/internal/career/form"
	"career-predictor/internal/career/notify"
	"career-predictor/internal/career/predictor"
	"career-predictor/internal/common/config"
	apperrors "career-predictor/internal/common/errors"
	"career-predictor/internal/common/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ==========================
// Test Helpers
// ==========================

type recordingNotifier struct {
	mu        sync.Mutex
	success   []string
	autoClose []time.Duration
	errs      []string
	info      []string
}

func (r *recordingNotifier) Success(msg string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success = append(r.success, msg)
	r.autoClose = append(r.autoClose, d)
}

func (r *recordingNotifier) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, msg)
}

func (r *recordingNotifier) Info(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info = append(r.info, msg)
}

type recordingPlayer struct {
	mu    sync.Mutex
	clips []notify.Clip
	err   error
}

func (p *recordingPlayer) Play(clip notify.Clip) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clips = append(p.clips, clip)
	return p.err
}

func (p *recordingPlayer) Clips() []notify.Clip {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notify.Clip(nil), p.clips...)
}

type snapshotLog struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (l *snapshotLog) record(s Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snaps = append(l.snaps, s)
}

func (l *snapshotLog) all() []Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Snapshot(nil), l.snaps...)
}

func fastConfig() *Config {
	return &Config{
		ProgressInterval: 2 * time.Millisecond,
		ProgressStep:     10,
		ProgressCap:      90,
		SettleDelay:      5 * time.Millisecond,
		SuccessAutoClose: 2000 * time.Millisecond,
	}
}

func validInput() map[string]string {
	return map[string]string{
		"age": "20", "cgpa": "8.5", "risk": "5", "leadership": "5",
		"networking": "5", "tech": "5", "finance": "5", "siblings": "5",
	}
}

func fill(t *testing.T, c *Controller, values map[string]string) {
	t.Helper()
	for k, v := range values {
		require.NoError(t, c.SetField(k, v))
	}
}

func sleepingPredictor(d time.Duration, label predictor.Label, calls *int32) predictor.Predictor {
	return predictor.Func(func(ctx context.Context, _ form.Values) (predictor.Label, error) {
		atomic.AddInt32(calls, 1)
		select {
		case <-time.After(d):
			return label, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
}

func newController(t *testing.T, p predictor.Predictor) (*Controller, *recordingNotifier, *recordingPlayer, *snapshotLog) {
	n := &recordingNotifier{}
	s := &recordingPlayer{}
	c := NewController(fastConfig(), p, n, s, logger.NewTestLogger(t))
	log := &snapshotLog{}
	c.Subscribe(log.record)
	return c, n, s, log
}

// ==========================
// Success Path
// ==========================

func TestSubmit_Success(t *testing.T) {
	c, n, s, log := newController(t, predictor.NewStub(40*time.Millisecond))
	fill(t, c, validInput())

	res, err := c.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, res.State)
	assert.Contains(t, predictor.Labels, res.Label)
	assert.NotEmpty(t, res.SubmissionID)
	assert.GreaterOrEqual(t, res.Duration, 40*time.Millisecond)

	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, 0, snap.Progress)
	assert.Equal(t, res.Label, snap.Prediction)
	assert.False(t, c.Busy())

	assert.Equal(t, []string{MsgSuccess}, n.success)
	assert.Equal(t, []time.Duration{2000 * time.Millisecond}, n.autoClose)
	assert.Empty(t, n.errs)
	require.NoError(t, c.WaitEffects(context.Background()))
	assert.ElementsMatch(t, []notify.Clip{notify.ClipClick, notify.ClipSuccess}, s.Clips())

	snaps := log.all()
	require.NotEmpty(t, snaps)
	last := snaps[len(snaps)-1]
	assert.Equal(t, StateIdle, last.State)
	assert.Equal(t, 0, last.Progress)

	var sawSucceeded bool
	for _, s := range snaps {
		if s.State == StateSucceeded {
			sawSucceeded = true
			assert.Equal(t, 100, s.Progress)
			assert.Equal(t, res.Label, s.Prediction)
		}
	}
	assert.True(t, sawSucceeded)
}

func TestSubmit_ProgressMonotonicAndCapped(t *testing.T) {
	var calls int32
	c, _, _, log := newController(t, sleepingPredictor(80*time.Millisecond, predictor.DataScientist, &calls))
	fill(t, c, validInput())

	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	prev := -1
	var maxInProgress int
	for _, s := range log.all() {
		if s.State != StateInProgress {
			continue
		}
		assert.GreaterOrEqual(t, s.Progress, prev)
		assert.LessOrEqual(t, s.Progress, 90)
		prev = s.Progress
		if s.Progress > maxInProgress {
			maxInProgress = s.Progress
		}
	}
	assert.Equal(t, 90, maxInProgress)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSubmit_PassesFormValues(t *testing.T) {
	var got form.Values
	p := predictor.Func(func(ctx context.Context, values form.Values) (predictor.Label, error) {
		got = values
		return predictor.Entrepreneur, nil
	})
	c, _, _, _ := newController(t, p)
	fill(t, c, validInput())

	_, err := c.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "20", got[form.FieldAge])
	assert.Equal(t, "8.5", got[form.FieldCGPA])
}

// ==========================
// Validation Gate
// ==========================

func TestSubmit_ValidationFailure(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		want   form.Errors
	}{
		{
			name:   "all empty",
			values: map[string]string{},
			want:   form.Errors{form.General: "All fields are required"},
		},
		{
			name: "age below range",
			values: func() map[string]string {
				v := validInput()
				v["age"] = "10"
				return v
			}(),
			want: form.Errors{form.FieldAge: "Age must be 15-100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			c, n, s, log := newController(t, sleepingPredictor(0, predictor.DataScientist, &calls))
			fill(t, c, tt.values)

			res, err := c.Submit(context.Background())

			assert.Nil(t, res)
			require.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed), "got %v", err)
			assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
			assert.Equal(t, tt.want, c.Snapshot().Errors)
			assert.Equal(t, StateIdle, c.Snapshot().State)
			assert.Empty(t, n.success)
			assert.Empty(t, n.errs)
			assert.Empty(t, s.Clips())
			for _, snap := range log.all() {
				assert.NotEqual(t, StateInProgress, snap.State)
			}

			stdErr := apperrors.AsStandard(err)
			assert.Equal(t, tt.want.Map(), stdErr.Metadata["errors"])
		})
	}
}

func TestSetField_ClearsOwnErrorAfterFailedSubmit(t *testing.T) {
	c, _, _, _ := newController(t, predictor.NewStub(0))
	v := validInput()
	v["age"] = "10"
	v["cgpa"] = "11"
	fill(t, c, v)

	_, err := c.Submit(context.Background())
	require.Error(t, err)
	require.Len(t, c.Snapshot().Errors, 2)

	require.NoError(t, c.SetField("age", "30"))

	errs := c.Snapshot().Errors
	assert.Equal(t, form.Errors{form.FieldCGPA: "CGPA must be 0-10"}, errs)
}

func TestSetField_UnknownField(t *testing.T) {
	c, _, _, _ := newController(t, predictor.NewStub(0))

	err := c.SetField("salary", "100")

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnknownField))
}

// ==========================
// Failure Path
// ==========================

func TestSubmit_FailureKeepsPreviousPrediction(t *testing.T) {
	fail := false
	p := predictor.Func(func(ctx context.Context, _ form.Values) (predictor.Label, error) {
		if fail {
			return "", errors.New("model offline")
		}
		return predictor.ProductManager, nil
	})
	c, n, s, _ := newController(t, p)
	fill(t, c, validInput())

	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	fail = true
	res, err := c.Submit(context.Background())

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodePredictionFailed))
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, err, res.Err)
	assert.Equal(t, predictor.ProductManager, c.Snapshot().Prediction)
	assert.Equal(t, StateIdle, c.Snapshot().State)
	assert.Equal(t, []string{MsgFailure}, n.errs)
	assert.Equal(t, []string{MsgSuccess}, n.success)

	require.NoError(t, c.WaitEffects(context.Background()))
	clips := s.Clips()
	var successes int
	for _, clip := range clips {
		if clip == notify.ClipSuccess {
			successes++
		}
	}
	assert.Equal(t, 1, successes)
}

func TestSubmit_EmptyLabelIsFailure(t *testing.T) {
	p := predictor.Func(func(ctx context.Context, _ form.Values) (predictor.Label, error) {
		return "", nil
	})
	c, n, _, _ := newController(t, p)
	fill(t, c, validInput())

	res, err := c.Submit(context.Background())

	require.Error(t, err)
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, predictor.Label(""), c.Snapshot().Prediction)
	assert.Equal(t, []string{MsgFailure}, n.errs)
}

func TestSubmit_PredictorPanic(t *testing.T) {
	p := predictor.Func(func(ctx context.Context, _ form.Values) (predictor.Label, error) {
		time.Sleep(10 * time.Millisecond)
		panic("boom")
	})
	c, n, _, _ := newController(t, p)
	fill(t, c, validInput())

	res, err := c.Submit(context.Background())

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodePredictionFailed))
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, StateIdle, c.Snapshot().State)
	assert.Equal(t, []string{MsgFailure}, n.errs)
}

func TestSubmit_ContextDeadline(t *testing.T) {
	var calls int32
	cfg := fastConfig()
	cfg.SettleDelay = time.Hour
	c := NewController(cfg, sleepingPredictor(time.Hour, predictor.DataScientist, &calls), &recordingNotifier{}, nil, logger.NewNoOpLogger())
	fill(t, c, validInput())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	res, err := c.Submit(ctx)

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodePredictionTimeout))
	assert.Equal(t, StateFailed, res.State)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, StateIdle, c.Snapshot().State)
}

// ==========================
// Concurrency
// ==========================

func TestSubmit_RejectsConcurrentSubmissionAndEdits(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls int32
	p := predictor.Func(func(ctx context.Context, _ form.Values) (predictor.Label, error) {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-release
		return predictor.FinancialAnalyst, nil
	})
	c, _, _, _ := newController(t, p)
	fill(t, c, validInput())

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background())
		done <- err
	}()
	<-started

	assert.True(t, c.Busy())
	_, err := c.Submit(context.Background())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSubmissionInProgress))
	err = c.SetField("age", "40")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSubmissionInProgress))
	assert.Equal(t, "20", c.Snapshot().Values[form.FieldAge])

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.False(t, c.Busy())
}

// ==========================
// Side Effect Isolation
// ==========================

type panickingNotifier struct{}

func (panickingNotifier) Success(string, time.Duration) { panic("toast") }
func (panickingNotifier) Error(string)                  { panic("toast") }
func (panickingNotifier) Info(string)                   { panic("toast") }

type panickingPlayer struct{}

func (panickingPlayer) Play(notify.Clip) error { panic("speaker") }

func TestSubmit_SideEffectFailuresAreIsolated(t *testing.T) {
	c := NewController(fastConfig(), predictor.NewStub(0), panickingNotifier{}, panickingPlayer{}, logger.NewNoOpLogger())
	c.Subscribe(func(Snapshot) { panic("observer") })
	fill(t, c, validInput())

	res, err := c.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, res.State)
	assert.Equal(t, StateIdle, c.Snapshot().State)
}

type stuckPlayer struct {
	release chan struct{}
}

func (p stuckPlayer) Play(notify.Clip) error {
	<-p.release
	return nil
}

func TestSubmit_DoesNotWaitForSound(t *testing.T) {
	player := stuckPlayer{release: make(chan struct{})}
	c := NewController(fastConfig(), predictor.NewStub(0), nil, player, logger.NewNoOpLogger())
	fill(t, c, validInput())

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background())
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		close(player.release)
		t.Fatal("Submit blocked on a stuck sound cue")
	}
	assert.Equal(t, StateIdle, c.Snapshot().State)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.WaitEffects(ctx), context.DeadlineExceeded)

	close(player.release)
	require.NoError(t, c.WaitEffects(context.Background()))
}

func TestSubmit_SoundErrorIgnored(t *testing.T) {
	c, _, s, _ := newController(t, predictor.NewStub(0))
	s.err = errors.New("no audio device")
	fill(t, c, validInput())

	_, err := c.Submit(context.Background())

	assert.NoError(t, err)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	c := NewController(fastConfig(), predictor.NewStub(0), nil, nil, logger.NewNoOpLogger())
	var count int32
	unsubscribe := c.Subscribe(func(Snapshot) { atomic.AddInt32(&count, 1) })

	require.NoError(t, c.SetField("age", "20"))
	unsubscribe()
	require.NoError(t, c.SetField("age", "21"))

	assert.Equal(t, int32(1), atomic.LoadInt32(&count))
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.LifecycleConfig{
		ProgressInterval: 500,
		ProgressStep:     10,
		ProgressCap:      90,
		SettleDelay:      500,
		SuccessAutoClose: 2000,
	})

	assert.Equal(t, DefaultConfig(), cfg)
}
