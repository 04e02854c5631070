// Copyright (c) NodeFlow Authors.
// Licensed under the MIT License.

/*
Package workflow implements the scheduling and execution core of the
NodeFlow automation framework: typed work-units (nodes) connected by
data-flow edges, executed with dependency-aware ordering, optional
level-parallelism, and configurable failure recovery.

# Core types

  - Definition: the graph model. Nodes, connections, parameters and
    schemas, plus validation, cycle detection, topological ordering and
    parallel leveling.
  - Parser: builds a validated Definition from a YAML or JSON document,
    accumulating structural errors instead of aborting.
  - ExecutionContext: the concurrency-safe per-run state (inputs,
    outputs, variables) shared by all node tasks.
  - Executor: runs a Definition sequentially or in parallel levels with
    retry, backoff and error-recovery policy.
  - Registry: the collaborator that resolves a node type to a runnable
    instance.
  - Builder: fluent API for constructing definitions in code.

# Execution model

The executor walks either the topological order (sequential) or the
dependency levels (parallel, one barrier per level). Node outputs
propagate along connections into scoped context variables, optionally
through a named or expression transform. A node failure is retried with
linear backoff and then handled per the configured recovery strategy:
fail_fast, continue_on_error or skip_dependents.
*/
package workflow
