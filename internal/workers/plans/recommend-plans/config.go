// internal/workers/plans/recommend-plans/config.go
package recommendplans

import (
	"fmt"
	"time"

	"phoneplan-workers/internal/common/config"
	"phoneplan-workers/internal/recommendation"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	TopN          int           `mapstructure:"top_n"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       10 * time.Second,
		TopN:          recommendation.DefaultTopN,
	}
}

// LoadConfig overlays the worker and recommendation sections of the
// application config on the defaults.
func LoadConfig(app *config.Config) *Config {
	cfg := DefaultConfig()
	wc := config.GetWorkerConfig(app, TaskType)
	cfg.Enabled = wc.Enabled
	if wc.MaxJobsActive > 0 {
		cfg.MaxJobsActive = wc.MaxJobsActive
	}
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	if app.Recommendation.TopN > 0 {
		cfg.TopN = app.Recommendation.TopN
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.TopN <= 0 || c.TopN > recommendation.DefaultTopN {
		return fmt.Errorf("top_n must be between 1 and %d", recommendation.DefaultTopN)
	}
	return nil
}
