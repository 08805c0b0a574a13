package share

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"

	awsutil "career-predictor/internal/common/aws"
)

// SNSSharer posts the share to a topic that fans out to subscribers.
type SNSSharer struct {
	client   awsutil.SNSPublisher
	topicARN string
}

func NewSNSSharer(client awsutil.SNSPublisher, topicARN string) *SNSSharer {
	return &SNSSharer{client: client, topicARN: topicARN}
}

func (s *SNSSharer) Available() bool {
	return s != nil && s.client != nil && s.topicARN != ""
}

func (s *SNSSharer) Share(ctx context.Context, p Payload) error {
	_, err := awsutil.PublishToTopic(ctx, s.client, s.topicARN, p.Title, body(p))
	return err
}

// EmailSharer mails the share text to a fixed recipient through SES.
type EmailSharer struct {
	client awsutil.SESSender
	from   string
	to     string
}

func NewEmailSharer(client awsutil.SESSender, from, to string) *EmailSharer {
	return &EmailSharer{client: client, from: from, to: to}
}

func (e *EmailSharer) Available() bool {
	return e != nil && e.client != nil && e.from != "" && e.to != ""
}

func (e *EmailSharer) Share(ctx context.Context, p Payload) error {
	return awsutil.SendTextEmail(ctx, e.client, e.from, e.to, p.Title, body(p))
}

func body(p Payload) string {
	if p.URL == "" {
		return p.Text
	}
	return fmt.Sprintf("%s\n%s", p.Text, p.URL)
}

// First returns the first available sharer, so a CLI can prefer SNS and fall
// back to email.
type First []NativeSharer

func (f First) Available() bool {
	return f.pick() != nil
}

func (f First) Share(ctx context.Context, p Payload) error {
	s := f.pick()
	if s == nil {
		return fmt.Errorf("no share target available")
	}
	return s.Share(ctx, p)
}

func (f First) pick() NativeSharer {
	for _, s := range f {
		if s != nil && s.Available() {
			return s
		}
	}
	return nil
}

var clipboardWriteAll = clipboard.WriteAll

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error {
	if err := clipboardWriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// SupportsClipboard reports whether the OS clipboard can be used at all.
func SupportsClipboard() bool {
	return !clipboard.Unsupported
}
