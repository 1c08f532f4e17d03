// internal/workers/survey/analyze-survey-results/config.go
package analyzesurveyresults

import (
	"time"

	"survey-analyst/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

// LoadConfig takes the job timeout from the worker's config section, falling
// back to 60s.
func LoadConfig(wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Config{
		Timeout: timeout,
	}
}
