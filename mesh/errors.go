package mesh

import "github.com/pkg/errors"

var (
	// ErrInputDegenerate is returned before triangulation starts when the
	// input cannot produce a single triangle.
	ErrInputDegenerate = errors.New("degenerate input")
	// ErrConstraintConflict is returned when a constraint cannot be recovered
	// because it crosses another constraint.
	ErrConstraintConflict = errors.New("constraint conflict")
	// ErrRefinementLimit is returned together with a usable mesh when
	// refinement stopped at its Steiner point limit.
	ErrRefinementLimit = errors.New("refinement limit reached")
)

// DefectError reports a broken internal invariant. It never describes a
// problem with the input polygon.
type DefectError struct {
	err error
}

func Defectf(format string, args ...interface{}) error {
	return &DefectError{err: errors.Errorf(format, args...)}
}

func (e *DefectError) Error() string { return "mesh defect: " + e.err.Error() }
func (e *DefectError) Unwrap() error { return e.err }
func (e *DefectError) Cause() error  { return e.err }

// IsDefect reports whether err is, or wraps, a DefectError.
func IsDefect(err error) bool {
	var defect *DefectError
	return errors.As(err, &defect)
}

// Threading errors through every flip and split would add a lot of noise to
// the topology code. Instead, failures panic with a meshPanic, and the public
// API recovers to convert it to an error.
type meshPanic struct {
	err error
}

// Panic with a DefectError.
func fatalf(format string, args ...interface{}) {
	panic(meshPanic{err: Defectf(format, args...)})
}

// Panic with an ordinary error, such as a constraint conflict.
func throw(err error) {
	panic(meshPanic{err: err})
}

func handlePanicRecover(r interface{}) error {
	if r != nil {
		if p, ok := r.(meshPanic); ok {
			return p.err
		}
		panic(r)
	}
	return nil
}
