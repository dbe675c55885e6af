package eval

import (
	"fmt"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/interpreter"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL evaluator.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// maxCallArgs bounds the number of dynamic arguments accepted by the
// registry-backed call() function.
const maxCallArgs = 8

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go. Declared vars
// are typed Dyn at compile time and resolved lazily through the
// environment's scope chain at evaluation time, so only the names an
// expression actually references hit the chain.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(env *Env, expression string, vars ...string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression, vars)
	if err != nil {
		return nil, err
	}
	out, _, err := program.program.Eval(e.activation(env))
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, scopeLabel(env), err)
	}
	return out.Value(), nil
}

func (e *celEvaluator) Compile(expression string, vars ...string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression, vars)
	if err != nil {
		return nil, err
	}
	return &celCompiledRule{
		evaluator:  e,
		program:    program,
		expression: expression,
	}, nil
}

func (e *celEvaluator) loadOrCompile(expression string, vars []string) (*celProgram, error) {
	// Declarations depend on vars, so they are part of the cache key.
	cacheKey := expression + "\x00" + strings.Join(vars, "\x00")
	if e.cache != nil {
		if cached, ok := e.cache.Get(cacheKey); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(vars)
	if err != nil {
		return nil, wrapEvaluatorError("cel", err)
	}
	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, "", issues.Err())
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, "", issues.Err())
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, wrapEvaluatorError("cel", err)
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if e.cache != nil {
		e.cache.Set(cacheKey, bundle)
	}
	return bundle, nil
}

func (e *celEvaluator) buildEnv(vars []string) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("scope", celgo.DynType),
	}
	for _, name := range vars {
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	if e.registry != nil {
		// cel-go has no variadic overloads, so call(name, args...) is
		// expanded into fixed-arity overloads sharing one binding.
		binding := e.callBinding()
		callOpts := make([]celgo.FunctionOpt, 0, maxCallArgs+1)
		for n := 0; n <= maxCallArgs; n++ {
			args := make([]*celgo.Type, 0, n+1)
			args = append(args, celgo.StringType)
			for i := 0; i < n; i++ {
				args = append(args, celgo.DynType)
			}
			callOpts = append(callOpts, celgo.Overload(
				fmt.Sprintf("call_dyn_%d", n),
				args,
				celgo.DynType,
				celgo.FunctionBinding(func(values ...ref.Val) ref.Val {
					return binding(values)
				}),
			))
		}
		opts = append(opts, celgo.Function("call", callOpts...))
	}
	return celgo.NewEnv(opts...)
}

// activation adapts the Env chain to cel-go's Activation so variable
// resolution walks the scope stack on demand.
func (e *celEvaluator) activation(env *Env) interpreter.Activation {
	return &chainActivation{env: env}
}

type chainActivation struct {
	env *Env
}

func (a *chainActivation) ResolveName(name string) (any, bool) {
	if a.env == nil {
		return nil, false
	}
	if name == "scope" {
		return a.env.binding(), true
	}
	return a.env.Resolve(name)
}

func (a *chainActivation) Parent() interpreter.Activation {
	return nil
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	program    *celProgram
	expression string
}

func (r *celCompiledRule) Evaluate(env *Env) (any, error) {
	if r.evaluator == nil || r.program == nil {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("compiled rule missing evaluator"))
	}
	out, _, err := r.program.program.Eval(r.evaluator.activation(env))
	if err != nil {
		return nil, wrapEvaluationError("cel", r.expression, scopeLabel(env), err)
	}
	return out.Value(), nil
}

func (e *celEvaluator) callBinding() func([]ref.Val) ref.Val {
	return func(values []ref.Val) ref.Val {
		if e.registry == nil {
			return types.NewErr("eval: function registry not configured")
		}
		if len(values) == 0 {
			return types.NewErr("eval: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("eval: call name must be string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := e.registry.Call(name, args...)
		if err != nil {
			return types.NewErr(err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
