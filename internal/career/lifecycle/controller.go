package lifecycle

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"career-predictor/internal/career/form"
	"career-predictor/internal/career/notify"
	"career-predictor/internal/career/predictor"
	"career-predictor/internal/common/errors"
	"career-predictor/internal/common/logger"
	"career-predictor/internal/common/metrics"
	"career-predictor/internal/common/observability"
)

// Controller owns one form and runs at most one submission at a time.
// Observers registered with Subscribe are called one at a time, never while
// the controller lock is held; they must not call Submit.
type Controller struct {
	config    *Config
	predictor predictor.Predictor
	notifier  notify.Notifier
	player    notify.Player
	logger    logger.Logger
	newID     func() string

	mu           sync.Mutex
	form         *form.Form
	state        State
	progress     int
	prediction   predictor.Label
	submissionID string
	observers    map[int]func(Snapshot)
	nextObserver int

	publishMu sync.Mutex
	effects   sync.WaitGroup
}

func NewController(cfg *Config, p predictor.Predictor, n notify.Notifier, s notify.Player, log logger.Logger) *Controller {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.ProgressInterval <= 0 {
		c := *cfg
		c.ProgressInterval = DefaultConfig().ProgressInterval
		cfg = &c
	}
	if s == nil {
		s = notify.Nop{}
	}
	return &Controller{
		config:    cfg,
		predictor: p,
		notifier:  n,
		player:    s,
		logger:    log.WithFields(map[string]interface{}{"component": "lifecycle"}),
		newID:     uuid.NewString,
		form:      form.New(),
		state:     StateIdle,
		observers: make(map[int]func(Snapshot)),
	}
}

// SetField edits the form. Inputs are locked while a submission runs.
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	if c.state != StateIdle {
		id := c.submissionID
		c.mu.Unlock()
		return errors.NewSubmissionInProgressError(id)
	}
	if err := c.form.Set(name, value); err != nil {
		c.mu.Unlock()
		return err
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != StateIdle
}

// Subscribe registers fn for every state change and returns a function that
// removes it.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextObserver
	c.nextObserver++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// Submit validates the form and, when it passes, runs one prediction. It
// returns after the controller is idle again. A validation failure returns
// CAREER_VALIDATION_FAILED without calling the predictor; a prediction
// failure returns the Result together with PREDICTION_FAILED or
// PREDICTION_TIMEOUT. Sound cues may still be playing when it returns.
func (c *Controller) Submit(ctx context.Context) (*Result, error) {
	ctx, span := observability.Tracer().Start(ctx, "career.submit")
	defer span.End()

	c.mu.Lock()
	if c.state != StateIdle {
		id := c.submissionID
		c.mu.Unlock()
		metrics.CareerSubmissions.WithLabelValues("rejected").Inc()
		return nil, errors.NewSubmissionInProgressError(id)
	}

	c.state = StateValidating
	if errs := c.form.Validate(); !errs.Empty() {
		c.state = StateIdle
		snap := c.snapshotLocked()
		c.mu.Unlock()

		c.publish(snap)
		c.recordInvalid(errs)
		span.SetAttributes(attribute.String("career.outcome", "invalid"))
		return nil, errors.NewValidationFailedError(errs.Map())
	}

	id := c.newID()
	c.submissionID = id
	c.state = StateInProgress
	c.progress = 0
	values := c.form.Values()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	span.SetAttributes(attribute.String("career.submission_id", id))
	log := c.logger.WithFields(map[string]interface{}{"submissionId": id})
	log.Debug("submission started", nil)

	c.publish(snap)
	c.play(notify.ClipClick)

	start := time.Now()
	label, err := c.run(ctx, values)
	elapsed := time.Since(start)
	if err == nil && label == "" {
		err = fmt.Errorf("predictor returned an empty label")
	}

	result := &Result{SubmissionID: id, Label: label, Duration: elapsed}

	c.mu.Lock()
	c.progress = 100
	if err == nil {
		c.state = StateSucceeded
		c.prediction = label
	} else {
		c.state = StateFailed
	}
	result.State = c.state
	snap = c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)

	if err == nil {
		metrics.CareerSubmissions.WithLabelValues("succeeded").Inc()
		metrics.CareerPredictionDuration.WithLabelValues("succeeded").Observe(elapsed.Seconds())
		span.SetAttributes(attribute.String("career.outcome", "succeeded"), attribute.String("career.label", string(label)))
		log.Info("prediction succeeded", map[string]interface{}{
			"prediction": label,
			"durationMs": elapsed.Milliseconds(),
		})
		c.play(notify.ClipSuccess)
		c.notify(func(n notify.Notifier) { n.Success(MsgSuccess, c.config.SuccessAutoClose) })
	} else {
		metrics.CareerSubmissions.WithLabelValues("failed").Inc()
		metrics.CareerPredictionDuration.WithLabelValues("failed").Observe(elapsed.Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, "prediction failed")
		log.Error("prediction failed", map[string]interface{}{
			"error":      err.Error(),
			"durationMs": elapsed.Milliseconds(),
		})
		c.notify(func(n notify.Notifier) { n.Error(MsgFailure) })

		if stderrors.Is(err, context.DeadlineExceeded) {
			result.Err = errors.NewPredictionTimeoutError(err)
		} else {
			result.Err = errors.NewPredictionFailedError(err)
		}
	}

	c.settle(ctx)

	if result.Err != nil {
		return result, result.Err
	}
	return result, nil
}

// run calls the predictor while a ticker advances the progress. The ticker is
// stopped and joined before run returns, whatever the predictor does.
func (c *Controller) run(ctx context.Context, values form.Values) (label predictor.Label, err error) {
	tickCtx, stop := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(tickCtx)
	g.Go(func() error {
		c.tick(gctx)
		return nil
	})
	defer func() {
		stop()
		_ = g.Wait()
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("predictor panicked: %v", r)
		}
	}()

	return c.predictor.Predict(ctx, values)
}

func (c *Controller) tick(ctx context.Context) {
	ticker := time.NewTicker(c.config.ProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		if c.state != StateInProgress {
			c.mu.Unlock()
			return
		}
		next := c.progress + c.config.ProgressStep
		if next > c.config.ProgressCap {
			next = c.config.ProgressCap
		}
		if next <= c.progress {
			c.mu.Unlock()
			continue
		}
		c.progress = next
		snap := c.snapshotLocked()
		c.mu.Unlock()

		c.publish(snap)
	}
}

// settle holds the terminal state for SettleDelay, or until ctx ends, then
// returns to idle.
func (c *Controller) settle(ctx context.Context) {
	if c.config.SettleDelay > 0 {
		timer := time.NewTimer(c.config.SettleDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
		timer.Stop()
	}

	c.mu.Lock()
	c.state = StateIdle
	c.progress = 0
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:        c.state,
		Progress:     c.progress,
		Values:       c.form.Values(),
		Errors:       c.form.Errors(),
		Prediction:   c.prediction,
		SubmissionID: c.submissionID,
	}
}

func (c *Controller) publish(snap Snapshot) {
	c.mu.Lock()
	observers := make([]func(Snapshot), 0, len(c.observers))
	for i := 0; i < c.nextObserver; i++ {
		if fn, ok := c.observers[i]; ok {
			observers = append(observers, fn)
		}
	}
	c.mu.Unlock()

	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	for _, fn := range observers {
		c.guard("observer", func() { fn(snap) })
	}
}

// play runs the cue in the background; sound never affects the submission.
func (c *Controller) play(clip notify.Clip) {
	c.effects.Add(1)
	go func() {
		defer c.effects.Done()
		c.guard("sound", func() {
			if err := c.player.Play(clip); err != nil {
				c.logger.Debug("sound failed", map[string]interface{}{"clip": clip, "error": err.Error()})
			}
		})
	}()
}

// WaitEffects blocks until the sound cues started so far have finished, or
// until ctx ends.
func (c *Controller) WaitEffects(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.effects.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) notify(fn func(notify.Notifier)) {
	if c.notifier == nil {
		return
	}
	c.guard("notifier", func() { fn(c.notifier) })
}

func (c *Controller) guard(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("side effect panicked", map[string]interface{}{"effect": what, "panic": fmt.Sprint(r)})
		}
	}()
	fn()
}

func (c *Controller) recordInvalid(errs form.Errors) {
	metrics.CareerSubmissions.WithLabelValues("invalid").Inc()
	for f := range errs {
		metrics.CareerValidationErrors.WithLabelValues(string(f)).Inc()
	}
}
