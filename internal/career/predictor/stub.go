package predictor

import (
	"context"
	"math/rand/v2"
	"time"

	"career-predictor/internal/career/form"
)

// DefaultStubDelay is how long the stub pretends to think.
const DefaultStubDelay = 2000 * time.Millisecond

// Stub ignores its input and returns a random label after Delay.
type Stub struct {
	Delay time.Duration
	pick  func(n int) int
}

func NewStub(delay time.Duration) *Stub {
	return &Stub{Delay: delay, pick: rand.IntN}
}

func (s *Stub) Predict(ctx context.Context, _ form.Values) (Label, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return "", err
	}

	pick := s.pick
	if pick == nil {
		pick = rand.IntN
	}
	return Labels[pick(len(Labels))], nil
}
