// Package eval executes expressions against a layered binding environment.
// It provides interchangeable evaluator engines (expr-lang/expr, cel-go, and
// goja behind the js_eval build tag) that resolve variables through an Env's
// scope chain at evaluation time.
package eval

import "fmt"

// Evaluator executes expressions against an environment. vars names the
// environment bindings the expression may reference; engines that require
// compile-time declarations (CEL) declare them as dynamic, the others inject
// them by name.
type Evaluator interface {
	Evaluate(env *Env, expression string, vars ...string) (any, error)
	Compile(expression string, vars ...string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program bound to its
// declared variables.
type CompiledRule interface {
	Evaluate(env *Env) (any, error)
}

func engineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*eval.exprEvaluator":
		return "expr"
	case "*eval.celEvaluator":
		return "cel"
	case "*eval.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
