package chain

import "maps"

// ChainMap layers independent maps into one logical mapping. The layer at
// index 0 is the base layer and is never removed; the last layer is the top
// layer and is the sole target of Insert. A key may live in several layers at
// once, in which case the highest layer wins for reads.
type ChainMap[K comparable, V any] struct {
	layers []map[K]V
}

// New builds a ChainMap whose base layer holds a copy of base. The copy keeps
// ownership of every layer with the container; mutating base afterwards does
// not affect the ChainMap. A nil base yields an empty base layer.
func New[K comparable, V any](base map[K]V) *ChainMap[K, V] {
	layer := make(map[K]V, len(base))
	maps.Copy(layer, base)
	return &ChainMap[K, V]{layers: []map[K]V{layer}}
}

// NewDefault builds a ChainMap with a single empty base layer.
func NewDefault[K comparable, V any]() *ChainMap[K, V] {
	return &ChainMap[K, V]{layers: []map[K]V{{}}}
}

// Insert writes key/value into the top layer regardless of whether lower
// layers already bind key; a same-named binding below is shadowed, not
// replaced. The previous value is reported only when it lived in the top
// layer itself, never when it was shadowed from a lower layer.
func (c *ChainMap[K, V]) Insert(key K, value V) (previous V, ok bool) {
	top := c.layers[len(c.layers)-1]
	previous, ok = top[key]
	top[key] = value
	return previous, ok
}

// Get returns the value for key from the highest layer that binds it,
// searching top layer first. The second result is false when no layer binds
// key.
func (c *ChainMap[K, V]) Get(key K) (V, bool) {
	for i := len(c.layers) - 1; i >= 0; i-- {
		if value, ok := c.layers[i][key]; ok {
			return value, true
		}
	}
	var zero V
	return zero, false
}

// MustGet is Get for callers that treat a missing key as a programming
// error. It panics when key is absent from every layer.
func (c *ChainMap[K, V]) MustGet(key K) V {
	value, ok := c.Get(key)
	if !ok {
		panic("no entry found for key")
	}
	return value
}

// Update rebinds key in place in whichever layer holds it, searching top
// layer first. fn receives a pointer to the current value and the result is
// written back into the SAME layer, so rebinding a name established in an
// outer scope does not create a shadowing entry in the top layer. Returns
// false, without calling fn, when no layer binds key.
func (c *ChainMap[K, V]) Update(key K, fn func(*V)) bool {
	for i := len(c.layers) - 1; i >= 0; i-- {
		if value, ok := c.layers[i][key]; ok {
			fn(&value)
			c.layers[i][key] = value
			return true
		}
	}
	return false
}

// PushLayer appends a new empty layer. Subsequent Inserts target it until
// another layer is pushed or it is popped.
func (c *ChainMap[K, V]) PushLayer() {
	c.layers = append(c.layers, map[K]V{})
}

// PushLayerWith appends a new layer pre-populated with a copy of m.
func (c *ChainMap[K, V]) PushLayerWith(m map[K]V) {
	layer := make(map[K]V, len(m))
	maps.Copy(layer, m)
	c.layers = append(c.layers, layer)
}

// PopLayer removes and returns the top layer, transferring ownership of the
// returned map to the caller. When only the base layer remains it is not
// removed: a fresh empty map is installed in its place and the old contents
// are returned, so the stack never drops below one layer. PopLayer never
// fails.
func (c *ChainMap[K, V]) PopLayer() map[K]V {
	if len(c.layers) == 1 {
		old := c.layers[0]
		c.layers[0] = map[K]V{}
		return old
	}
	last := len(c.layers) - 1
	old := c.layers[last]
	c.layers[last] = nil
	c.layers = c.layers[:last]
	return old
}

// Depth returns the number of layers. It is always at least 1.
func (c *ChainMap[K, V]) Depth() int {
	return len(c.layers)
}

// GetFunc looks up a key given in an equivalent borrowed form Q rather than
// the owned key type K. eq reports whether a stored key matches the query
// and must agree with == on K: two keys equal under == must match the same
// queries. Layers are searched top first; within a layer the scan is linear,
// so GetFunc trades the map's hashed lookup for query-type flexibility.
//
// Go methods cannot introduce extra type parameters, hence the package-level
// function.
func GetFunc[K comparable, V any, Q any](c *ChainMap[K, V], key Q, eq func(K, Q) bool) (V, bool) {
	for i := len(c.layers) - 1; i >= 0; i-- {
		for k, v := range c.layers[i] {
			if eq(k, key) {
				return v, true
			}
		}
	}
	var zero V
	return zero, false
}
