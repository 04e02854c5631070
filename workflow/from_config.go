package workflow

import (
	"go.uber.org/zap"

	"github.com/akaoio/nodeflow/config"
)

// NewExecutorFromConfig creates an executor configured from a loaded
// executor configuration section.
func NewExecutorFromConfig(registry Registry, logger *zap.Logger, cfg config.ExecutorConfig) *Executor {
	e := NewExecutor(registry, logger)
	e.SetParallelExecution(cfg.Parallel)
	e.SetMaxRetryAttempts(cfg.MaxRetryAttempts)
	e.SetErrorRecoveryStrategy(RecoveryStrategy(cfg.RecoveryStrategy))
	if cfg.NodeTimeout > 0 {
		e.SetExecutionTimeout(cfg.NodeTimeout)
	}
	if cfg.RetryBackoff > 0 {
		e.SetRetryBackoff(cfg.RetryBackoff)
	}
	e.SetMaxConcurrency(cfg.MaxConcurrency)
	if cfg.ExpressionTransforms {
		e.EnableExpressionTransforms()
	}
	return e
}
