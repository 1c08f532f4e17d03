// internal/workers/survey/resolve-survey-intent/config.go
package resolvesurveyintent

import (
	"time"

	"survey-analyst/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

// LoadConfig takes the job timeout from the worker's config section, falling
// back to 15s.
func LoadConfig(wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Config{
		Timeout: timeout,
	}
}
