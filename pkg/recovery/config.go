package recovery

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Escalation and recovery defaults.
const (
	// DefaultLogOnlyThreshold is the hidden interval above which a resume
	// is logged but no corrective action is taken.
	DefaultLogOnlyThreshold = 5 * time.Second

	// DefaultClearLoadingThreshold is the hidden interval above which busy
	// loading entries are force-cleared on resume.
	DefaultClearLoadingThreshold = 30 * time.Second

	// DefaultFullRecoveryThreshold is the hidden interval above which the
	// application is marked stale and a full recovery run is triggered.
	DefaultFullRecoveryThreshold = 120 * time.Second

	// DefaultSuppressionWindow is the blanket notification suppression
	// window opened around a recovery run.
	DefaultSuppressionWindow = 5 * time.Second
)

// Config holds coordinator configuration. The zero value selects every
// default; use NewCoordinatorWithConfig or LoadConfig to build one.
type Config struct {
	// LogOnlyThreshold is the hidden interval above which a resume is
	// observable in the log. Below it, nothing happens.
	LogOnlyThreshold time.Duration

	// ClearLoadingThreshold is the hidden interval above which busy
	// loading entries are cleared on resume.
	ClearLoadingThreshold time.Duration

	// FullRecoveryThreshold is the hidden interval above which the stale
	// flag is set and a recovery run is triggered.
	FullRecoveryThreshold time.Duration

	// MaxRecoveryAttempts bounds session refresh attempts per run.
	// Zero selects the session package default.
	MaxRecoveryAttempts int

	// AttemptDelay is the fixed delay between failed refresh attempts.
	// Zero selects the session package default.
	AttemptDelay time.Duration

	// SuppressionWindow is the blanket suppression window opened when a
	// recovery run starts. The window is fixed-length; it is not extended
	// if the run outlives it.
	SuppressionWindow time.Duration

	// WatchdogTimeout bounds how long a loading entry may stay busy.
	// Zero selects the loading package default.
	WatchdogTimeout time.Duration
}

// withDefaults returns a copy with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	if c.LogOnlyThreshold <= 0 {
		c.LogOnlyThreshold = DefaultLogOnlyThreshold
	}
	if c.ClearLoadingThreshold <= 0 {
		c.ClearLoadingThreshold = DefaultClearLoadingThreshold
	}
	if c.FullRecoveryThreshold <= 0 {
		c.FullRecoveryThreshold = DefaultFullRecoveryThreshold
	}
	if c.SuppressionWindow <= 0 {
		c.SuppressionWindow = DefaultSuppressionWindow
	}
	return c
}

// Validate checks that the escalation thresholds are strictly ascending.
func (c Config) Validate() error {
	c = c.withDefaults()
	if c.LogOnlyThreshold >= c.ClearLoadingThreshold {
		return fmt.Errorf("log-only threshold %v must be below clear-loading threshold %v",
			c.LogOnlyThreshold, c.ClearLoadingThreshold)
	}
	if c.ClearLoadingThreshold >= c.FullRecoveryThreshold {
		return fmt.Errorf("clear-loading threshold %v must be below full-recovery threshold %v",
			c.ClearLoadingThreshold, c.FullRecoveryThreshold)
	}
	return nil
}

// fileConfig is the YAML representation. Durations are strings in Go
// duration syntax ("30s", "2m").
type fileConfig struct {
	LogOnlyThreshold      string `yaml:"log_only_threshold"`
	ClearLoadingThreshold string `yaml:"clear_loading_threshold"`
	FullRecoveryThreshold string `yaml:"full_recovery_threshold"`
	MaxRecoveryAttempts   int    `yaml:"max_recovery_attempts"`
	AttemptDelay          string `yaml:"attempt_delay"`
	SuppressionWindow     string `yaml:"suppression_window"`
	WatchdogTimeout       string `yaml:"watchdog_timeout"`
}

// LoadConfig reads coordinator configuration from a YAML file. Absent
// fields select defaults. The result is validated.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration bytes.
func ParseConfig(data []byte) (Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	var cfg Config
	fields := []struct {
		name  string
		raw   string
		field *time.Duration
	}{
		{"log_only_threshold", fc.LogOnlyThreshold, &cfg.LogOnlyThreshold},
		{"clear_loading_threshold", fc.ClearLoadingThreshold, &cfg.ClearLoadingThreshold},
		{"full_recovery_threshold", fc.FullRecoveryThreshold, &cfg.FullRecoveryThreshold},
		{"attempt_delay", fc.AttemptDelay, &cfg.AttemptDelay},
		{"suppression_window", fc.SuppressionWindow, &cfg.SuppressionWindow},
		{"watchdog_timeout", fc.WatchdogTimeout, &cfg.WatchdogTimeout},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", f.name, f.raw, err)
		}
		*f.field = d
	}
	cfg.MaxRecoveryAttempts = fc.MaxRecoveryAttempts

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
