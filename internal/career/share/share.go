// Package share publishes a prediction through a native share target, falling
// back to the clipboard.
package share

import (
	"context"
	"fmt"
	"strings"

	"career-predictor/internal/career/notify"
	"career-predictor/internal/common/errors"
	"career-predictor/internal/common/logger"
	"career-predictor/internal/common/metrics"
)

const (
	DefaultTitle   = "Career Prediction"
	DefaultAppLink = "[Your App Link]"
	DefaultHashtag = "#Hackathon2025"

	msgShared = "Shared successfully!"
	msgCopied = "Copied to clipboard!"
)

// Channel names where a share ended up.
type Channel string

const (
	ChannelNative    Channel = "native"
	ChannelClipboard Channel = "clipboard"
)

// Payload is what a native share target receives.
type Payload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url,omitempty"`
}

// NativeSharer is a platform share target. Available is checked before every share.
type NativeSharer interface {
	Available() bool
	Share(ctx context.Context, p Payload) error
}

// Clipboard receives the share text when no native target is available.
type Clipboard interface {
	WriteText(text string) error
}

type Config struct {
	Title   string
	AppLink string
	Hashtag string
	URL     string
}

func (c *Config) withDefaults() *Config {
	out := Config{Title: DefaultTitle, AppLink: DefaultAppLink, Hashtag: DefaultHashtag}
	if c != nil {
		out.URL = c.URL
		if c.Title != "" {
			out.Title = c.Title
		}
		if c.AppLink != "" {
			out.AppLink = c.AppLink
		}
		if c.Hashtag != "" {
			out.Hashtag = c.Hashtag
		}
	}
	return &out
}

// Message renders the share text for label.
func (c *Config) Message(label string) string {
	cfg := c.withDefaults()
	return fmt.Sprintf("My predicted career is %s! Try it at %s %s", label, cfg.AppLink, cfg.Hashtag)
}

// Message renders the share text with the default link and hashtag.
func Message(label string) string {
	return (*Config)(nil).Message(label)
}

// Outcome reports a completed share.
type Outcome struct {
	Channel Channel `json:"channel"`
	Message string  `json:"message"`
}

// Action shares the current prediction. Either platform may be nil; a nil
// notifier logs its toasts instead.
type Action struct {
	config    *Config
	native    NativeSharer
	clipboard Clipboard
	notifier  notify.Notifier
	logger    logger.Logger
}

func NewAction(cfg *Config, native NativeSharer, clipboard Clipboard, n notify.Notifier, log logger.Logger) *Action {
	l := log.WithFields(map[string]interface{}{"component": "share"})
	if n == nil {
		n = notify.NewLogNotifier(l)
	}
	return &Action{
		config:    cfg.withDefaults(),
		native:    native,
		clipboard: clipboard,
		notifier:  n,
		logger:    l,
	}
}

// Share sends the message for label. There is no retry.
func (a *Action) Share(ctx context.Context, label string) (*Outcome, error) {
	if strings.TrimSpace(label) == "" {
		return nil, errors.NewNothingToShareError()
	}
	text := a.config.Message(label)

	if a.native != nil && a.native.Available() {
		err := a.native.Share(ctx, Payload{Title: a.config.Title, Text: text, URL: a.config.URL})
		if err != nil {
			a.record(ChannelNative, err)
			a.logger.Error("share failed", map[string]interface{}{"channel": ChannelNative, "error": err.Error()})
			return nil, errors.NewShareFailedError(string(ChannelNative), err)
		}
		a.record(ChannelNative, nil)
		a.notifier.Success(msgShared, notify.DefaultAutoClose)
		return &Outcome{Channel: ChannelNative, Message: text}, nil
	}

	if a.clipboard != nil {
		if err := a.clipboard.WriteText(text); err != nil {
			a.record(ChannelClipboard, err)
			a.logger.Error("clipboard write failed", map[string]interface{}{"error": err.Error()})
			return nil, errors.NewShareFailedError(string(ChannelClipboard), err)
		}
		a.record(ChannelClipboard, nil)
		a.notifier.Info(msgCopied)
		return &Outcome{Channel: ChannelClipboard, Message: text}, nil
	}

	return nil, errors.NewShareFailedError("none", fmt.Errorf("no share target available"))
}

func (a *Action) record(ch Channel, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.CareerShares.WithLabelValues(string(ch), status).Inc()
}
