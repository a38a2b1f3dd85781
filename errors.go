package ringdataset

import "errors"

var (
	// ErrObjectNotFound is returned when the named subject does not exist in
	// the scene geometry source.
	ErrObjectNotFound = errors.New("object not found in scene")

	// ErrNoGeometry is returned when the subject exists but has no
	// measurable extent.
	ErrNoGeometry = errors.New("object has no measurable geometry")

	// ErrAttemptBudgetExhausted is returned when the run hits the global
	// attempt bound before accepting the requested number of samples. The
	// accompanying summary still carries the samples accepted so far.
	ErrAttemptBudgetExhausted = errors.New("global attempt budget exhausted")

	// ErrBlenderNotFound is returned when no Blender executable can be
	// located for rendering.
	ErrBlenderNotFound = errors.New("blender executable not found")
)
