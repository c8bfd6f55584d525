// Package unify implements structural unification over a types.Pool.
//
// A Unifier owns one substitution (type-variable id to handle). Several
// Unifiers may share a pool; none of them stores binding state on the pool
// itself, so independent inference contexts never see each other's
// bindings. Use Fork to start a nested scope from a copy of the parent
// substitution.
//
// Unify is atomic: when it fails, every binding recorded during the call is
// undone before the error is returned.
package unify
