package config

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the complete NodeFlow configuration.
type Config struct {
	// Executor controls workflow execution behavior.
	Executor ExecutorConfig `yaml:"executor" env:"EXECUTOR"`

	// Log controls structured logging.
	Log LogConfig `yaml:"log" env:"LOG"`

	// Metrics controls Prometheus instrumentation.
	Metrics MetricsConfig `yaml:"metrics" env:"METRICS"`
}

// ExecutorConfig holds workflow executor settings.
type ExecutorConfig struct {
	// Parallel enables level-parallel execution.
	Parallel bool `yaml:"parallel" env:"PARALLEL"`
	// MaxRetryAttempts caps per-node retries.
	MaxRetryAttempts int `yaml:"max_retry_attempts" env:"MAX_RETRY_ATTEMPTS"`
	// RetryBackoff is the linear backoff base between attempts.
	RetryBackoff time.Duration `yaml:"retry_backoff" env:"RETRY_BACKOFF"`
	// NodeTimeout applies to nodes without their own timeout.
	NodeTimeout time.Duration `yaml:"node_timeout" env:"NODE_TIMEOUT"`
	// RecoveryStrategy: fail_fast, continue_on_error, skip_dependents.
	RecoveryStrategy string `yaml:"recovery_strategy" env:"RECOVERY_STRATEGY"`
	// MaxConcurrency limits concurrent nodes per level. Zero is unlimited.
	MaxConcurrency int `yaml:"max_concurrency" env:"MAX_CONCURRENCY"`
	// ExpressionTransforms enables JavaScript transform expressions.
	ExpressionTransforms bool `yaml:"expression_transforms" env:"EXPRESSION_TRANSFORMS"`
}

// LogConfig holds zap logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json, console.
	Format string `yaml:"format" env:"FORMAT"`
	// OutputPaths are zap sink URLs.
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// EnableCaller annotates entries with the call site.
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// EnableStacktrace attaches stack traces to error entries.
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Enabled turns metric collection on.
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	var errs []string

	if c.Executor.MaxRetryAttempts < 0 {
		errs = append(errs, "max_retry_attempts must not be negative")
	}
	if c.Executor.RetryBackoff < 0 {
		errs = append(errs, "retry_backoff must not be negative")
	}
	if c.Executor.NodeTimeout <= 0 {
		errs = append(errs, "node_timeout must be positive")
	}
	switch c.Executor.RecoveryStrategy {
	case "fail_fast", "continue_on_error", "skip_dependents":
	default:
		errs = append(errs, fmt.Sprintf("unknown recovery_strategy: %s", c.Executor.RecoveryStrategy))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("unknown log level: %s", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("unknown log format: %s", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// NewLogger builds a zap logger from the log configuration.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = cfg.Format
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}
	zc.DisableCaller = !cfg.EnableCaller
	zc.DisableStacktrace = !cfg.EnableStacktrace
	if cfg.Format == "console" {
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
