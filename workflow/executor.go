package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/akaoio/nodeflow/internal/metrics"
	"github.com/akaoio/nodeflow/value"
)

// RecoveryStrategy controls how the executor reacts when a node fails
// after exhausting its retries.
type RecoveryStrategy string

const (
	// RecoveryFailFast aborts the run on the first node failure.
	RecoveryFailFast RecoveryStrategy = "fail_fast"
	// RecoveryContinueOnError records the failure and keeps executing.
	RecoveryContinueOnError RecoveryStrategy = "continue_on_error"
	// RecoverySkipDependents records the failure and skips every
	// transitive dependent of the failed node.
	RecoverySkipDependents RecoveryStrategy = "skip_dependents"
)

// Executor defaults. Backoff and retry limits are configuration, not
// contract; these values mirror the historical behavior.
const (
	DefaultMaxRetryAttempts = 3
	DefaultRetryBackoff     = 100 * time.Millisecond
)

// NodeResult is the recorded outcome of one node execution.
type NodeResult struct {
	NodeID   string
	Success  bool
	Output   value.Value
	Error    string
	Attempts int
	Duration time.Duration
	TimedOut bool
	Skipped  bool
}

// Result is the outcome of one workflow run. Execute always returns a
// populated Result, never a panic.
type Result struct {
	Success       bool
	ErrorMessage  string
	ExecutionTime time.Duration
	NodeResults   map[string]NodeResult
	FinalOutputs  map[string]value.Value
}

// Status is a point-in-time snapshot of a run in flight.
type Status struct {
	CurrentNode    string
	CompletedNodes int
	TotalNodes     int
	Running        bool
	Elapsed        time.Duration
}

// Executor runs workflow definitions against a node registry, either
// sequentially in topological order or in parallel dependency levels.
// Configuration is fixed for the duration of one Execute call.
type Executor struct {
	registry Registry
	logger   *zap.Logger
	metrics  *metrics.Collector

	parallel         bool
	maxRetryAttempts int
	recovery         RecoveryStrategy
	executionTimeout time.Duration
	retryBackoff     time.Duration
	maxConcurrency   int

	transformMu sync.RWMutex
	transforms  map[string]TransformFunc
	exprEval    *ExpressionEvaluator

	statusMu  sync.Mutex
	status    Status
	startedAt time.Time
}

// NewExecutor creates an executor with the default configuration:
// sequential execution, fail_fast recovery, 3 retry attempts, 100ms
// backoff base and a 30s advisory node timeout. A nil logger disables
// logging.
func NewExecutor(registry Registry, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		registry:         registry,
		logger:           logger.With(zap.String("component", "workflow_executor")),
		maxRetryAttempts: DefaultMaxRetryAttempts,
		recovery:         RecoveryFailFast,
		executionTimeout: DefaultNodeTimeout,
		retryBackoff:     DefaultRetryBackoff,
		transforms:       builtinTransforms(),
	}
}

// SetParallelExecution toggles level-parallel execution.
func (e *Executor) SetParallelExecution(enabled bool) { e.parallel = enabled }

// SetMaxRetryAttempts caps the number of retries any node may perform,
// regardless of its declared retry_count.
func (e *Executor) SetMaxRetryAttempts(max int) { e.maxRetryAttempts = max }

// SetErrorRecoveryStrategy selects the failure recovery policy.
func (e *Executor) SetErrorRecoveryStrategy(s RecoveryStrategy) { e.recovery = s }

// SetExecutionTimeout sets the advisory timeout applied to nodes that do
// not declare their own.
func (e *Executor) SetExecutionTimeout(d time.Duration) { e.executionTimeout = d }

// SetRetryBackoff sets the backoff base; the wait before attempt n+1 is
// base multiplied by n.
func (e *Executor) SetRetryBackoff(d time.Duration) { e.retryBackoff = d }

// SetMaxConcurrency limits how many node tasks of one level run at once
// under parallel execution. Zero means unlimited.
func (e *Executor) SetMaxConcurrency(n int) { e.maxConcurrency = n }

// SetMetricsCollector attaches a Prometheus collector. A nil collector
// disables metrics.
func (e *Executor) SetMetricsCollector(c *metrics.Collector) { e.metrics = c }

// RegisterTransform binds a name to a transform function, replacing any
// previous binding. The table is pre-seeded with "identity" and
// "to_string".
func (e *Executor) RegisterTransform(name string, fn TransformFunc) {
	e.transformMu.Lock()
	defer e.transformMu.Unlock()
	e.transforms[name] = fn
}

// EnableExpressionTransforms makes the executor evaluate transform
// expressions that are not registered names as JavaScript expressions
// over the crossing value. Evaluation failures fall back to identity.
func (e *Executor) EnableExpressionTransforms() {
	e.transformMu.Lock()
	defer e.transformMu.Unlock()
	if e.exprEval == nil {
		e.exprEval = NewExpressionEvaluator()
	}
}

// Status returns a live snapshot of the run in flight. It is safe to
// call concurrently with Execute.
func (e *Executor) Status() Status {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	s := e.status
	if s.Running {
		s.Elapsed = time.Since(e.startedAt)
	}
	return s
}

// Execute runs the workflow with empty inputs.
func (e *Executor) Execute(ctx context.Context, def *Definition) *Result {
	return e.ExecuteWithContext(ctx, def, NewExecutionContext(def.ID()))
}

// ExecuteWithInputs runs the workflow with caller-supplied start
// parameters.
func (e *Executor) ExecuteWithInputs(ctx context.Context, def *Definition, inputs map[string]value.Value) *Result {
	ec := NewExecutionContext(def.ID())
	for name, v := range inputs {
		ec.SetInput(name, v)
	}
	return e.ExecuteWithContext(ctx, def, ec)
}

// ExecuteWithContext runs the workflow against an existing execution
// context. It always returns a populated Result; internal faults are
// recovered and converted into a failed result.
func (e *Executor) ExecuteWithContext(ctx context.Context, def *Definition, ec *ExecutionContext) (res *Result) {
	start := time.Now()
	res = &Result{
		NodeResults:  make(map[string]NodeResult),
		FinalOutputs: make(map[string]value.Value),
	}

	defer func() {
		if r := recover(); r != nil {
			res.Success = false
			res.ErrorMessage = fmt.Sprintf("Workflow execution failed: %v", r)
			e.logger.Error("workflow execution panicked",
				zap.String("workflow_id", def.ID()),
				zap.Any("panic", r),
			)
		}
		res.ExecutionTime = time.Since(start)
		if res.Success {
			res.FinalOutputs = ec.Outputs()
		}
		e.finishStatus(res.ExecutionTime)
		e.metrics.RecordRun(def.ID(), res.Success, res.ExecutionTime)
	}()

	e.beginStatus(def.NodeCount())

	e.logger.Info("starting workflow execution",
		zap.String("workflow_id", def.ID()),
		zap.String("execution_id", ec.ExecutionID()),
		zap.Int("nodes", def.NodeCount()),
		zap.Bool("parallel", e.parallel),
	)

	// A pure cycle must surface as a circular-dependency failure, not as
	// generic invalidity, so it is checked first.
	if def.HasCycles() {
		res.ErrorMessage = "Workflow contains circular dependencies"
		return res
	}
	if !def.IsValid() {
		res.ErrorMessage = "Invalid workflow definition"
		return res
	}

	if e.parallel {
		e.executeParallel(ctx, def, ec, res)
	} else {
		e.executeSequential(ctx, def, ec, res)
	}

	e.logger.Info("workflow execution finished",
		zap.String("workflow_id", def.ID()),
		zap.String("execution_id", ec.ExecutionID()),
		zap.Bool("success", res.Success),
		zap.Duration("duration", time.Since(start)),
	)
	return res
}

// executeSequential runs nodes one at a time in topological order.
func (e *Executor) executeSequential(ctx context.Context, def *Definition, ec *ExecutionContext, res *Result) {
	order := def.ExecutionOrder()
	if len(order) != def.NodeCount() {
		res.ErrorMessage = "Cannot determine execution order (circular dependencies)"
		return
	}

	skipped := make(map[string]bool)
	for _, nodeID := range order {
		node, ok := def.GetNode(nodeID)
		if !ok || !node.Enabled {
			e.bumpCompleted()
			continue
		}
		if skipped[nodeID] {
			res.NodeResults[nodeID] = skippedResult(nodeID)
			e.bumpCompleted()
			continue
		}

		nr := e.runNode(ctx, def, node, ec)
		res.NodeResults[nodeID] = nr
		e.bumpCompleted()

		if nr.Success {
			e.propagate(def, node.ID, ec)
			continue
		}
		if aborted := e.handleFailure(def, nr, res, skipped); aborted {
			return
		}
	}
	res.Success = true
}

// handleFailure applies the recovery strategy to a failed node result
// and reports whether the run must abort.
func (e *Executor) handleFailure(def *Definition, nr NodeResult, res *Result, skipped map[string]bool) bool {
	switch e.recovery {
	case RecoveryContinueOnError:
		return false
	case RecoverySkipDependents:
		e.markDependents(def, nr.NodeID, skipped)
		return false
	default:
		res.Success = false
		res.ErrorMessage = fmt.Sprintf("Node '%s' failed: %s", nr.NodeID, nr.Error)
		return true
	}
}

// markDependents adds every transitive dependent of nodeID to the
// skipped set, following both connection and depends_on edges.
func (e *Executor) markDependents(def *Definition, nodeID string, skipped map[string]bool) {
	queue := []string{nodeID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range def.Nodes() {
			if skipped[n.ID] || n.ID == nodeID {
				continue
			}
			for _, dep := range def.dependenciesOf(n.ID) {
				if dep == current {
					skipped[n.ID] = true
					queue = append(queue, n.ID)
					break
				}
			}
		}
	}
	if len(skipped) > 0 {
		e.logger.Debug("marked dependents as skipped",
			zap.String("failed_node", nodeID),
			zap.Int("skipped", len(skipped)),
		)
	}
}

// runNode resolves, prepares and executes a single node with retries
// and backoff. Successful outputs are stored in the context; data
// propagation along connections is the caller's responsibility.
func (e *Executor) runNode(ctx context.Context, def *Definition, node Node, ec *ExecutionContext) NodeResult {
	e.setCurrentNode(node.ID)
	start := time.Now()
	nr := NodeResult{NodeID: node.ID}

	runner, err := e.registry.CreateNode(node.Type)
	if err != nil {
		nr.Error = err.Error()
		nr.Duration = time.Since(start)
		e.logger.Error("node resolution failed",
			zap.String("node_id", node.ID),
			zap.String("node_type", node.Type),
			zap.Error(err),
		)
		e.metrics.RecordNode(node.Type, false, nr.Duration)
		return nr
	}

	inputs := e.prepareInputs(def, node, ec)

	timeout := node.Timeout
	if timeout <= 0 {
		timeout = e.executionTimeout
	}

	// A negative retry_count from a parsed document means no retries,
	// never zero attempts.
	maxRetries := node.RetryCount
	if maxRetries < 0 {
		maxRetries = 0
	}
	if maxRetries > e.maxRetryAttempts {
		maxRetries = e.maxRetryAttempts
	}
	totalAttempts := maxRetries + 1

	for attempt := 1; attempt <= totalAttempts; attempt++ {
		nr.Attempts = attempt

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		attemptStart := time.Now()
		out, runErr := runSafely(attemptCtx, runner, inputs)
		attemptDuration := time.Since(attemptStart)
		cancel()

		if attemptDuration > timeout || errors.Is(runErr, context.DeadlineExceeded) {
			nr.TimedOut = true
			e.logger.Warn("node execution exceeded timeout",
				zap.String("node_id", node.ID),
				zap.Duration("timeout", timeout),
				zap.Duration("duration", attemptDuration),
			)
			e.metrics.RecordTimeout(node.Type)
		}

		if runErr == nil {
			nr.Success = true
			nr.Output = out
			break
		}
		nr.Error = runErr.Error()

		e.logger.Debug("node attempt failed",
			zap.String("node_id", node.ID),
			zap.Int("attempt", attempt),
			zap.Int("total_attempts", totalAttempts),
			zap.Error(runErr),
		)

		if attempt < totalAttempts {
			e.metrics.RecordRetry(node.Type)
			select {
			case <-time.After(e.retryBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				nr.Error = ctx.Err().Error()
				nr.Duration = time.Since(start)
				e.metrics.RecordNode(node.Type, false, nr.Duration)
				return nr
			}
		}
	}

	nr.Duration = time.Since(start)
	if nr.Success {
		ec.SetOutput(node.ID, nr.Output)
		e.logger.Debug("node execution completed",
			zap.String("node_id", node.ID),
			zap.Int("attempts", nr.Attempts),
			zap.Duration("duration", nr.Duration),
		)
	} else {
		e.logger.Error("node execution failed",
			zap.String("node_id", node.ID),
			zap.Int("attempts", nr.Attempts),
			zap.String("error", nr.Error),
		)
	}
	e.metrics.RecordNode(node.Type, nr.Success, nr.Duration)
	return nr
}

// prepareInputs merges workflow default parameters with the node's
// declared parameters (node wins), applies ${name} template
// substitution to string parameters, and overlays connection-fed
// variables under their target input names.
func (e *Executor) prepareInputs(def *Definition, node Node, ec *ExecutionContext) map[string]value.Value {
	inputs := make(map[string]value.Value, len(node.Parameters))
	for name, v := range def.DefaultParameters() {
		inputs[name] = v
	}
	for name, v := range node.Parameters {
		inputs[name] = v
	}

	for name, v := range inputs {
		if s, ok := v.AsString(); ok {
			inputs[name] = value.String(e.substitute(s, node.ID, ec))
		}
	}

	for _, c := range def.ConnectionsTo(node.ID) {
		if v, ok := ec.Variable(node.ID + "." + c.ToInput); ok {
			inputs[c.ToInput] = v
		}
	}
	return inputs
}

// substitute replaces every ${name} placeholder with the string form of
// the matching context variable. The node-scoped variable wins over the
// plain variable name, which wins over workflow inputs. Unresolved
// placeholders are left verbatim.
func (e *Executor) substitute(s, nodeID string, ec *ExecutionContext) string {
	return paramRefPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if v, ok := ec.Variable(nodeID + "." + name); ok {
			return v.ToString()
		}
		if v, ok := ec.Variable(name); ok {
			return v.ToString()
		}
		if v, ok := ec.Input(name); ok {
			return v.ToString()
		}
		return match
	})
}

// propagate pushes a completed node's output along its outgoing
// connections into the targets' scoped variable slots, applying the
// connection transform when one is declared.
func (e *Executor) propagate(def *Definition, nodeID string, ec *ExecutionContext) {
	out, ok := ec.Output(nodeID)
	if !ok {
		return
	}
	for _, c := range def.ConnectionsFrom(nodeID) {
		v := out
		if c.TransformExpression != "" {
			v = e.applyTransform(c.TransformExpression, v)
		}
		ec.SetVariable(c.ToNodeID+"."+c.ToInput, v)
	}
}

// applyTransform resolves a transform expression against the named
// transform table, falling back to JavaScript evaluation when enabled.
// An unknown transform behaves as identity.
func (e *Executor) applyTransform(expr string, v value.Value) value.Value {
	e.transformMu.RLock()
	fn, ok := e.transforms[expr]
	eval := e.exprEval
	e.transformMu.RUnlock()

	if ok {
		return fn(v)
	}
	if eval != nil {
		out, err := eval.Evaluate(expr, v)
		if err != nil {
			e.logger.Warn("transform expression failed, passing value through",
				zap.String("expression", expr),
				zap.Error(err),
			)
			return v
		}
		return out
	}
	return v
}

// runSafely invokes a runner and converts a panic into an error, so one
// misbehaving node cannot take down a whole parallel level.
func runSafely(ctx context.Context, runner NodeRunner, inputs map[string]value.Value) (out value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("node panicked: %v", r)
		}
	}()
	return runner.Run(ctx, inputs)
}

func skippedResult(nodeID string) NodeResult {
	return NodeResult{
		NodeID:  nodeID,
		Skipped: true,
		Error:   "skipped: upstream dependency failed",
	}
}

func (e *Executor) beginStatus(totalNodes int) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.startedAt = time.Now()
	e.status = Status{TotalNodes: totalNodes, Running: true}
}

func (e *Executor) finishStatus(elapsed time.Duration) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.Running = false
	e.status.Elapsed = elapsed
	e.status.CurrentNode = ""
}

func (e *Executor) setCurrentNode(nodeID string) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.CurrentNode = nodeID
}

func (e *Executor) bumpCompleted() {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.CompletedNodes++
}
