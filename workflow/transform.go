package workflow

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/akaoio/nodeflow/value"
)

// TransformFunc is a named pure function applied to a value crossing a
// connection.
type TransformFunc func(value.Value) value.Value

// builtinTransforms returns the transform table every executor starts
// with.
func builtinTransforms() map[string]TransformFunc {
	return map[string]TransformFunc{
		"identity": func(v value.Value) value.Value { return v },
		"to_string": func(v value.Value) value.Value {
			return value.String(v.ToString())
		},
	}
}

// ExpressionEvaluator evaluates connection transform expressions as
// JavaScript, with the incoming value bound to the global "value". The
// underlying runtime is not safe for concurrent use, so evaluation is
// serialized.
type ExpressionEvaluator struct {
	mu sync.Mutex
	vm *goja.Runtime
}

// NewExpressionEvaluator creates an evaluator with a fresh runtime.
func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{vm: goja.New()}
}

// Evaluate runs expr with in bound as "value" and converts the result
// back into a Value.
func (e *ExpressionEvaluator) Evaluate(expr string, in value.Value) (value.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.vm.Set("value", in.ToAny()); err != nil {
		return value.Null(), fmt.Errorf("bind transform input: %w", err)
	}
	res, err := e.vm.RunString(expr)
	if err != nil {
		if exc, ok := err.(*goja.Exception); ok {
			return value.Null(), fmt.Errorf("transform expression failed: %s", exc.Value().String())
		}
		return value.Null(), fmt.Errorf("transform expression failed: %w", err)
	}
	return value.FromAny(res.Export()), nil
}
