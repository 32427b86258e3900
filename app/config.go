package app

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/leadquiz/core/config"
	"github.com/m3rciful/leadquiz/core/database"
)

// DefaultKeyword starts the quiz when it appears in a plain message.
const DefaultKeyword = "квиз"

// QuizConfig tunes the questionnaire flow.
type QuizConfig struct {
	// Keyword triggers the quiz from plain text; "-" disables the trigger.
	Keyword string `yaml:"keyword" envconfig:"QUIZ_KEYWORD"`
	// NotifyParallelism > 1 notifies that many admins at once.
	NotifyParallelism int           `yaml:"notify_parallelism" envconfig:"NOTIFY_PARALLELISM"`
	NotifyTimeout     time.Duration `yaml:"notify_timeout" envconfig:"NOTIFY_TIMEOUT"`
	// StatsCacheTTL keeps the /stats lead count for this long; 0 disables.
	StatsCacheTTL time.Duration `yaml:"stats_cache_ttl" envconfig:"STATS_CACHE_TTL"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database database.Config `yaml:"database"`
	Quiz     QuizConfig      `yaml:"quiz"`
}

// CoreConfig exposes the shared part of the configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads the optional YAML file at path, overlays environment
// variables and validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.ReadYAML(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := cfg.Database.Normalize(); err != nil {
		return nil, err
	}

	kw := strings.TrimSpace(cfg.Quiz.Keyword)
	switch kw {
	case "":
		kw = DefaultKeyword
	case "-":
		kw = ""
	}
	cfg.Quiz.Keyword = kw
	return &cfg, nil
}
