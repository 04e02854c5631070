package config

import "time"

// DefaultConfig returns the configuration used when nothing is supplied.
func DefaultConfig() *Config {
	return &Config{
		Executor: DefaultExecutorConfig(),
		Log:      DefaultLogConfig(),
		Metrics:  DefaultMetricsConfig(),
	}
}

// DefaultExecutorConfig returns the default executor settings.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		Parallel:             false,
		MaxRetryAttempts:     3,
		RetryBackoff:         100 * time.Millisecond,
		NodeTimeout:          30 * time.Second,
		RecoveryStrategy:     "fail_fast",
		MaxConcurrency:       0,
		ExpressionTransforms: false,
	}
}

// DefaultLogConfig returns the default logging settings.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultMetricsConfig returns the default metrics settings.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Namespace: "nodeflow",
	}
}
