package eval

import "testing"

func TestFunctionRegistryRegisterAndCall(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("add", func(args ...any) (any, error) {
		return args[0].(int) + args[1].(int), nil
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := registry.Call("ADD", 1, 2)
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if result != 3 {
		t.Fatalf("expected 3, got %v", result)
	}

	if err := registry.Register("add", func(...any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := registry.Register("", func(...any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	if err := registry.Register("nilfn", nil); err == nil {
		t.Fatalf("expected nil function to fail")
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatalf("expected unregistered call to fail")
	}
}

func TestFunctionRegistryCloneIsDetached(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("one", func(...any) (any, error) { return 1, nil }); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	clone := registry.Clone()
	if err := clone.Register("two", func(...any) (any, error) { return 2, nil }); err != nil {
		t.Fatalf("register on clone failed: %v", err)
	}

	if _, err := registry.Call("two"); err == nil {
		t.Fatalf("clone registration must not leak into the original")
	}
	if names := clone.Names(); len(names) != 2 || names[0] != "one" || names[1] != "two" {
		t.Fatalf("unexpected clone names: %v", names)
	}
}

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache()
	if _, ok := cache.Get("k"); ok {
		t.Fatalf("expected empty cache miss")
	}
	cache.Set("k", 42)
	value, ok := cache.Get("k")
	if !ok || value != 42 {
		t.Fatalf("expected cached value, got %v (ok=%t)", value, ok)
	}
}
