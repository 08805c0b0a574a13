package predictcareer

import (
	"time"

	"career-predictor/internal/career/lifecycle"
	"career-predictor/internal/common/config"
)

type Config struct {
	Enabled   bool
	Timeout   time.Duration
	Lifecycle *lifecycle.Config
}

// LoadConfig takes the progress timings from the lifecycle section but drops
// the settle delay: a job completes as soon as the outcome is known.
func LoadConfig(appCfg *config.Config) *Config {
	wc := config.GetWorkerConfig(appCfg, TaskType)
	lc := lifecycle.ConfigFrom(appCfg.Lifecycle)
	lc.SettleDelay = 0
	return &Config{
		Enabled:   wc.Enabled,
		Timeout:   config.GetDuration(wc.Timeout),
		Lifecycle: lc,
	}
}
