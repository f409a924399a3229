// internal/workers/auth/auth-logout/config.go
package authlogout

import (
	"fmt"
	"time"

	"phoneplan-workers/internal/common/config"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	// how long logout audit events are kept in redis
	AuditTTL time.Duration `mapstructure:"audit_ttl"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 10,
		Timeout:       5 * time.Second,
		AuditTTL:      30 * 24 * time.Hour,
	}
}

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
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.AuditTTL < 0 {
		return fmt.Errorf("audit_ttl must not be negative")
	}
	return nil
}
