package eval

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnvDefineAndResolve(t *testing.T) {
	env := NewEnv()
	if _, ok := env.Define("x", 1); ok {
		t.Fatalf("fresh define should report no previous binding")
	}
	value, ok := env.Resolve("x")
	if !ok || value != 1 {
		t.Fatalf("expected x=1, got %v (ok=%t)", value, ok)
	}
	if _, ok := env.Resolve("missing"); ok {
		t.Fatalf("expected miss for undeclared name")
	}
}

func TestEnvGlobals(t *testing.T) {
	globals := map[string]any{"pi": 3.14}
	env := NewEnv(WithGlobals(globals), WithScopeName("root"))

	if got := env.Scope().Name; got != "root" {
		t.Fatalf("expected root scope name, got %q", got)
	}
	if value, _ := env.Resolve("pi"); value != 3.14 {
		t.Fatalf("expected seeded global, got %v", value)
	}

	globals["pi"] = 0.0
	if value, _ := env.Resolve("pi"); value != 3.14 {
		t.Fatalf("mutating the seed map should not affect the env, got %v", value)
	}
}

func TestEnvShadowing(t *testing.T) {
	env := NewEnv()
	env.Define("x", 0)
	env.PushScope("block")
	env.Define("x", 1)

	if value, _ := env.Resolve("x"); value != 1 {
		t.Fatalf("expected inner binding to shadow, got %v", value)
	}

	bindings := env.PopScope()
	if diff := cmp.Diff(map[string]any{"x": 1}, bindings); diff != "" {
		t.Fatalf("popped scope mismatch (-want +got):\n%s", diff)
	}
	if value, _ := env.Resolve("x"); value != 0 {
		t.Fatalf("expected outer binding after pop, got %v", value)
	}
}

func TestEnvAssignReachesDeclaringScope(t *testing.T) {
	env := NewEnv()
	env.Define("counter", 1)
	env.PushScope("fn")

	if ok := env.Assign("counter", 2); !ok {
		t.Fatalf("expected assign to find the outer binding")
	}

	// Leaving the scope must not lose the rebinding.
	inner := env.PopScope()
	if len(inner) != 0 {
		t.Fatalf("assign must not create a shadowing entry, got %v", inner)
	}
	if value, _ := env.Resolve("counter"); value != 2 {
		t.Fatalf("expected counter=2, got %v", value)
	}

	if ok := env.Assign("missing", 1); ok {
		t.Fatalf("expected assign to fail for undeclared name")
	}
}

func TestEnvScopeDescriptors(t *testing.T) {
	env := NewEnv()
	root := env.Scope()
	if root.ID == "" {
		t.Fatalf("root scope needs a snapshot id")
	}

	block := env.PushScope("block")
	if block.ID == "" || block.ID == root.ID {
		t.Fatalf("expected a fresh snapshot id per scope")
	}
	if got := env.Scope(); got != block {
		t.Fatalf("expected current scope %+v, got %+v", block, got)
	}
	if env.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", env.Depth())
	}

	env.PopScope()
	if got := env.Scope(); got != root {
		t.Fatalf("expected root scope after pop, got %+v", got)
	}
}

func TestEnvPopRootScope(t *testing.T) {
	env := NewEnv(WithGlobals(map[string]any{"x": 1}))
	before := env.Scope()

	bindings := env.PopScope()
	if diff := cmp.Diff(map[string]any{"x": 1}, bindings); diff != "" {
		t.Fatalf("root bindings mismatch (-want +got):\n%s", diff)
	}
	if env.Depth() != 1 {
		t.Fatalf("root scope must survive, got depth %d", env.Depth())
	}
	if _, ok := env.Resolve("x"); ok {
		t.Fatalf("root scope should be empty after pop")
	}

	after := env.Scope()
	if after.Name != before.Name {
		t.Fatalf("root scope name must be stable, got %q", after.Name)
	}
	if after.ID == before.ID {
		t.Fatalf("cleared root scope should carry a fresh snapshot id")
	}
}

func TestEnvPushScopeWith(t *testing.T) {
	env := NewEnv()
	env.Define("x", 0)
	env.PushScopeWith("call", map[string]any{"x": 1, "arg": "a"})

	if value, _ := env.Resolve("x"); value != 1 {
		t.Fatalf("expected seeded scope to shadow, got %v", value)
	}
	if value, _ := env.Resolve("arg"); value != "a" {
		t.Fatalf("expected seeded binding, got %v", value)
	}
}
