package workflow

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// executeParallel runs the workflow level by level. Every node inside a
// level runs concurrently; the next level starts only after the whole
// level has joined. Under fail_fast a failure aborts between levels, so
// in-flight siblings of the failed node always run to completion.
func (e *Executor) executeParallel(ctx context.Context, def *Definition, ec *ExecutionContext, res *Result) {
	levels := def.ExecutionLevels()
	if countLevelNodes(levels) != def.NodeCount() {
		res.ErrorMessage = "Cannot determine execution order (circular dependencies)"
		return
	}

	skipped := make(map[string]bool)
	for levelIdx, level := range levels {
		runnable := make([]Node, 0, len(level))
		for _, nodeID := range level {
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
			runnable = append(runnable, node)
		}
		if len(runnable) == 0 {
			continue
		}

		e.logger.Debug("executing level",
			zap.Int("level", levelIdx),
			zap.Int("nodes", len(runnable)),
		)

		results := make([]NodeResult, len(runnable))
		var g errgroup.Group
		if e.maxConcurrency > 0 {
			g.SetLimit(e.maxConcurrency)
		}
		for i, node := range runnable {
			g.Go(func() error {
				results[i] = e.runNode(ctx, def, node, ec)
				return nil
			})
		}
		g.Wait()

		// Outcomes are processed in declaration order after the barrier
		// so propagation and recovery stay deterministic.
		aborted := false
		for _, nr := range results {
			res.NodeResults[nr.NodeID] = nr
			e.bumpCompleted()
			if nr.Success {
				e.propagate(def, nr.NodeID, ec)
				continue
			}
			if e.handleFailure(def, nr, res, skipped) {
				aborted = true
			}
		}
		if aborted {
			return
		}
		if err := ctx.Err(); err != nil {
			res.Success = false
			res.ErrorMessage = err.Error()
			return
		}
	}
	res.Success = true
}

func countLevelNodes(levels [][]string) int {
	n := 0
	for _, level := range levels {
		n += len(level)
	}
	return n
}
