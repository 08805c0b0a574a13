package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"

	"career-predictor/internal/career/lifecycle"
	"career-predictor/internal/career/notify"
	"career-predictor/internal/career/predictor"
	"career-predictor/internal/career/share"
	awsutil "career-predictor/internal/common/aws"
	"career-predictor/internal/common/config"
	"career-predictor/internal/common/database"
	"career-predictor/internal/common/logger"
	"career-predictor/internal/common/observability"
)

// app holds the process-wide clients shared by the UI and the predict command.
type app struct {
	cfg *config.Config
	zap *zap.Logger
	log logger.Logger
	obs *observability.Observability

	pg          *database.PostgresClient
	sns         *sns.Client
	ses         *ses.Client
	snsNotifier *notify.SNSNotifier
}

func newApp(ctx context.Context, cfg *config.Config, logOutput string) (*app, error) {
	zl, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, logOutput)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &app{cfg: cfg, zap: zl, log: logger.NewZapAdapter(zl)}

	a.obs = observability.New(observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
	}, a.log)

	if cfg.Prediction.Provider == "catalog" {
		a.pg, err = database.Connect(ctx, cfg.Database.Postgres, 5*time.Second)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	if region := cfg.Integrations.AWS.Region; region != "" {
		if cfg.Notifications.SNSTopicARN != "" || cfg.Share.SNSTopicARN != "" {
			if a.sns, err = awsutil.NewSNSClient(ctx, region); err != nil {
				a.Close()
				return nil, err
			}
		}
		if cfg.Share.EmailFrom != "" && cfg.Share.EmailTo != "" {
			if a.ses, err = awsutil.NewSESClient(ctx, region); err != nil {
				a.Close()
				return nil, err
			}
		}
	}
	if a.sns != nil && cfg.Notifications.SNSTopicARN != "" {
		a.snsNotifier = notify.NewSNSNotifier(a.sns, cfg.Notifications.SNSTopicARN, a.log)
	}

	return a, nil
}

// controller builds a lifecycle controller that reports to n (and SNS when
// configured) and plays cues on a terminal bell written to bell.
func (a *app) controller(n notify.Notifier, bell io.Writer) (*lifecycle.Controller, error) {
	var db *sql.DB
	if a.pg != nil {
		db = a.pg.DB
	}
	p, err := predictor.NewFromConfig(a.cfg, db, a.log)
	if err != nil {
		return nil, err
	}

	notifiers := notify.Multi{n}
	if a.snsNotifier != nil {
		notifiers = append(notifiers, a.snsNotifier)
	}

	var player notify.Player = notify.Nop{}
	if a.cfg.Notifications.Sound && bell != nil {
		player = notify.NewBell(bell)
	}

	ctrl := lifecycle.NewController(lifecycle.ConfigFrom(a.cfg.Lifecycle), p, notifiers, player, a.log)
	ctrl.Subscribe(a.recordOutcomes())
	return ctrl, nil
}

// recordOutcomes reports each terminal state once to the otel meter.
func (a *app) recordOutcomes() func(lifecycle.Snapshot) {
	var last lifecycle.State
	return func(s lifecycle.Snapshot) {
		if s.State == last {
			return
		}
		last = s.State
		if s.State == lifecycle.StateSucceeded || s.State == lifecycle.StateFailed {
			a.obs.RecordSubmission(context.Background(), string(s.State))
		}
	}
}

// shareAction prefers SNS, then SES email, then clip.
func (a *app) shareAction(n notify.Notifier, clip share.Clipboard) *share.Action {
	var native share.First
	if a.sns != nil && a.cfg.Share.SNSTopicARN != "" {
		native = append(native, share.NewSNSSharer(a.sns, a.cfg.Share.SNSTopicARN))
	}
	if a.ses != nil {
		native = append(native, share.NewEmailSharer(a.ses, a.cfg.Share.EmailFrom, a.cfg.Share.EmailTo))
	}

	var target share.NativeSharer
	if len(native) > 0 {
		target = native
	}

	return share.NewAction(&share.Config{
		Title:   a.cfg.Share.Title,
		AppLink: a.cfg.Share.AppLink,
		Hashtag: a.cfg.Share.Hashtag,
		URL:     a.cfg.Share.URL,
	}, target, clip, n, a.log)
}

func (a *app) Close() {
	if a.snsNotifier != nil {
		a.snsNotifier.Flush()
	}
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.obs != nil {
		a.obs.Shutdown()
	}
	_ = a.zap.Sync()
}
