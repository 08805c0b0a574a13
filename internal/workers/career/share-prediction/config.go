package shareprediction

import (
	"time"

	"career-predictor/internal/career/share"
	"career-predictor/internal/common/config"
)

type Config struct {
	Enabled bool
	Timeout time.Duration
	Share   share.Config
}

func LoadConfig(appCfg *config.Config) *Config {
	wc := config.GetWorkerConfig(appCfg, TaskType)
	return &Config{
		Enabled: wc.Enabled,
		Timeout: config.GetDuration(wc.Timeout),
		Share: share.Config{
			Title:   appCfg.Share.Title,
			AppLink: appCfg.Share.AppLink,
			Hashtag: appCfg.Share.Hashtag,
			URL:     appCfg.Share.URL,
		},
	}
}
