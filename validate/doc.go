// Package validate provides argument precondition checks used by the entity
// constructors in the model package.
//
// Each helper returns an error describing the violated precondition. Callers
// are expected to fail fast: a validation error at construction time always
// aborts the surrounding parse.
package validate
