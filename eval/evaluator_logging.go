package eval

import "time"

// LogEvent describes an evaluation attempt for logging.
type LogEvent struct {
	Engine   string
	Expr     string
	Scope    string
	Duration time.Duration
	Err      error
}

// Logger records evaluator events.
type Logger interface {
	LogEvaluation(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogEvaluation implements Logger.
func (f LoggerFunc) LogEvaluation(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogEvaluation(LogEvent) {}

// NewLoggedEvaluator wraps inner so every evaluation is reported to logger
// with its engine, expression, scope, duration, and outcome. A nil logger
// yields a no-op wrapper.
func NewLoggedEvaluator(inner Evaluator, logger Logger) Evaluator {
	if logger == nil {
		logger = noopLogger{}
	}
	return &loggedEvaluator{inner: inner, logger: logger}
}

type loggedEvaluator struct {
	inner  Evaluator
	logger Logger
}

func (l *loggedEvaluator) Evaluate(env *Env, expression string, vars ...string) (any, error) {
	start := time.Now()
	value, err := l.inner.Evaluate(env, expression, vars...)
	l.logger.LogEvaluation(LogEvent{
		Engine:   engineName(l.inner),
		Expr:     expression,
		Scope:    scopeLabel(env),
		Duration: time.Since(start),
		Err:      err,
	})
	return value, err
}

func (l *loggedEvaluator) Compile(expression string, vars ...string) (CompiledRule, error) {
	compiled, err := l.inner.Compile(expression, vars...)
	if err != nil {
		return nil, err
	}
	return &loggedCompiledRule{
		rule:       compiled,
		engine:     engineName(l.inner),
		expression: expression,
		logger:     l.logger,
	}, nil
}

type loggedCompiledRule struct {
	rule       CompiledRule
	engine     string
	expression string
	logger     Logger
}

func (r *loggedCompiledRule) Evaluate(env *Env) (any, error) {
	start := time.Now()
	value, err := r.rule.Evaluate(env)
	r.logger.LogEvaluation(LogEvent{
		Engine:   r.engine,
		Expr:     r.expression,
		Scope:    scopeLabel(env),
		Duration: time.Since(start),
		Err:      err,
	})
	return value, err
}

func scopeLabel(env *Env) string {
	if env == nil {
		return "unknown"
	}
	return env.Scope().Name
}
