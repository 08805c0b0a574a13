package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	awsutil "career-predictor/internal/common/aws"
	"career-predictor/internal/common/logger"
)

var newID = func() string { return uuid.NewString() }

// SNSNotifier publishes each notification as JSON to a topic. Publishing runs
// in the background; failures are logged and dropped.
type SNSNotifier struct {
	client   awsutil.SNSPublisher
	topicARN string
	timeout  time.Duration
	logger   logger.Logger
	wg       sync.WaitGroup
}

func NewSNSNotifier(client awsutil.SNSPublisher, topicARN string, log logger.Logger) *SNSNotifier {
	return &SNSNotifier{
		client:   client,
		topicARN: topicARN,
		timeout:  5 * time.Second,
		logger:   log.WithFields(map[string]interface{}{"component": "notify.sns", "topic": topicARN}),
	}
}

func (s *SNSNotifier) Success(msg string, autoClose time.Duration) {
	s.publish(build(LevelSuccess, msg, autoClose))
}

func (s *SNSNotifier) Error(msg string) { s.publish(build(LevelError, msg, DefaultAutoClose)) }

func (s *SNSNotifier) Info(msg string) { s.publish(build(LevelInfo, msg, DefaultAutoClose)) }

// Flush waits for in-flight publishes.
func (s *SNSNotifier) Flush() {
	s.wg.Wait()
}

func (s *SNSNotifier) publish(n Notification) {
	body, err := json.Marshal(struct {
		Notification
		AutoCloseMs int64 `json:"autoCloseMs"`
	}{n, n.AutoClose.Milliseconds()})
	if err != nil {
		s.logger.Error("encode notification", map[string]interface{}{"error": err.Error()})
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		id, err := awsutil.PublishToTopic(ctx, s.client, s.topicARN, "", string(body))
		if err != nil {
			s.logger.Warn("notification publish failed", map[string]interface{}{
				"notificationId": n.ID,
				"error":          err.Error(),
			})
			return
		}
		s.logger.Debug("notification published", map[string]interface{}{
			"notificationId": n.ID,
			"messageId":      id,
		})
	}()
}
