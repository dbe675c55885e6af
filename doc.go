// Package chain provides ChainMap, a stack of independent key-value layers
// that reads as one logical map. Lookups search from the most recently pushed
// layer back toward the base layer, while inserts always target the top
// layer, which models lexical-scope shadowing without a tree or linked list
// of scopes.
//
// The container always holds at least one layer. Popping the only remaining
// layer clears it in place and hands the old contents back instead of
// shrinking the stack to zero.
//
// ChainMap performs no locking; callers sharing one across goroutines must
// synchronise externally.
package chain
