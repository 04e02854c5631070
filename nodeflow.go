// Package nodeflow provides a top-level convenience entry point for
// loading and running workflows with minimal boilerplate.
//
// Usage:
//
//	import "github.com/akaoio/nodeflow"
//
//	registry := workflow.NewStaticRegistry()
//	registry.RegisterFunc("my.task", myRunner)
//	result, err := nodeflow.RunFile(ctx, "pipeline.yaml", registry, nil)
//
// This is a thin wrapper around the workflow package; use it when you
// prefer the shorter import path over wiring a Parser and Executor
// yourself.
package nodeflow

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/akaoio/nodeflow/config"
	"github.com/akaoio/nodeflow/value"
	"github.com/akaoio/nodeflow/workflow"
)

// RunFile parses a workflow document (YAML or JSON, decided by the file
// extension) and executes it with a default executor.
func RunFile(ctx context.Context, path string, registry workflow.Registry, inputs map[string]value.Value) (*workflow.Result, error) {
	def, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	executor := workflow.NewExecutor(registry, logger)
	return executor.ExecuteWithInputs(ctx, def, inputs), nil
}

// RunFileWithConfig is like RunFile but configures the executor and
// logger from a loaded configuration.
func RunFileWithConfig(ctx context.Context, path string, registry workflow.Registry, inputs map[string]value.Value, cfg *config.Config) (*workflow.Result, error) {
	def, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	executor := workflow.NewExecutorFromConfig(registry, logger, cfg.Executor)
	return executor.ExecuteWithInputs(ctx, def, inputs), nil
}

// ParseFile parses a workflow document from disk, returning the first
// structural error when the document is invalid.
func ParseFile(path string) (*workflow.Definition, error) {
	p := workflow.NewParser()

	var def *workflow.Definition
	var err error
	if strings.HasSuffix(path, ".json") {
		def, err = p.ParseJSONFile(path)
	} else {
		def, err = p.ParseYAMLFile(path)
	}
	if err != nil {
		return nil, err
	}
	if p.HasErrors() {
		return nil, fmt.Errorf("invalid workflow document: %s", p.Errors()[0])
	}
	return def, nil
}
