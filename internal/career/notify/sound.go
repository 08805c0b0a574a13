package notify

import (
	"io"
	"sync"
)

// Clip names a sound cue.
type Clip string

const (
	ClipClick   Clip = "click"
	ClipSuccess Clip = "success"
)

// Player plays a cue. Errors are informational; callers never act on them.
type Player interface {
	Play(clip Clip) error
}

// Bell rings the terminal bell, once for a click and twice for success.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

func (b *Bell) Play(clip Clip) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	seq := "\a"
	if clip == ClipSuccess {
		seq = "\a\a"
	}
	_, err := io.WriteString(b.w, seq)
	return err
}

// Nop plays nothing.
type Nop struct{}

func (Nop) Play(Clip) error { return nil }
