package eval

import (
	"github.com/google/uuid"

	chain "github.com/FreeMasen/hash-chain"
)

// Scope identifies one binding scope in an Env. ID is a snapshot identifier
// generated when the scope is entered, usable for tracing which scope
// produced a value.
type Scope struct {
	Name string
	ID   string
}

// Env is an interpreter-style variable environment: a ChainMap of bindings
// paired with a descriptor for every open scope. Define targets the current
// scope, Resolve searches from the current scope outward, and Assign rebinds
// a name in whichever scope declared it.
type Env struct {
	vars   *chain.ChainMap[string, any]
	scopes []Scope
}

// EnvOption configures Env construction.
type EnvOption func(*envConfig)

type envConfig struct {
	name    string
	globals map[string]any
}

// WithScopeName names the root scope. Defaults to "global".
func WithScopeName(name string) EnvOption {
	return func(cfg *envConfig) {
		if name != "" {
			cfg.name = name
		}
	}
}

// WithGlobals seeds the root scope with bindings. The map is copied so the
// environment stays detached from the caller's reference.
func WithGlobals(bindings map[string]any) EnvOption {
	return func(cfg *envConfig) {
		cfg.globals = bindings
	}
}

// NewEnv constructs an environment with a single root scope.
func NewEnv(opts ...EnvOption) *Env {
	cfg := envConfig{name: "global"}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Env{
		vars:   chain.New(cfg.globals),
		scopes: []Scope{{Name: cfg.name, ID: uuid.NewString()}},
	}
}

// Define binds name to value in the current scope, shadowing any same-named
// binding in an enclosing scope. It reports the value previously bound in
// the current scope, if any.
func (e *Env) Define(name string, value any) (previous any, ok bool) {
	return e.vars.Insert(name, value)
}

// Resolve returns the value bound to name in the innermost scope that
// declares it.
func (e *Env) Resolve(name string) (any, bool) {
	return e.vars.Get(name)
}

// Assign rebinds name in the scope that declared it, leaving the current
// scope untouched when the name belongs to an enclosing scope. Returns false
// when no scope binds name.
func (e *Env) Assign(name string, value any) bool {
	return e.vars.Update(name, func(v *any) { *v = value })
}

// PushScope enters a new scope and returns its descriptor.
func (e *Env) PushScope(name string) Scope {
	e.vars.PushLayer()
	return e.pushDescriptor(name)
}

// PushScopeWith enters a new scope pre-populated with bindings and returns
// its descriptor.
func (e *Env) PushScopeWith(name string, bindings map[string]any) Scope {
	e.vars.PushLayerWith(bindings)
	return e.pushDescriptor(name)
}

func (e *Env) pushDescriptor(name string) Scope {
	scope := Scope{Name: name, ID: uuid.NewString()}
	e.scopes = append(e.scopes, scope)
	return scope
}

// PopScope leaves the current scope and returns its bindings. The root scope
// is never removed: its bindings are returned, the scope is left empty, and
// its descriptor gets a fresh snapshot ID to mark the new contents.
func (e *Env) PopScope() map[string]any {
	bindings := e.vars.PopLayer()
	if len(e.scopes) > 1 {
		e.scopes = e.scopes[:len(e.scopes)-1]
	} else {
		e.scopes[0].ID = uuid.NewString()
	}
	return bindings
}

// Scope returns the current (innermost) scope descriptor.
func (e *Env) Scope() Scope {
	return e.scopes[len(e.scopes)-1]
}

// Depth returns the number of open scopes, always at least 1.
func (e *Env) Depth() int {
	return e.vars.Depth()
}

// binding exposes the current scope to evaluators as the "scope" variable.
func (e *Env) binding() map[string]any {
	scope := e.Scope()
	return map[string]any{
		"name":  scope.Name,
		"id":    scope.ID,
		"depth": e.Depth(),
	}
}
