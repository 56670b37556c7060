package common

import (
	"errors"
	"fmt"
)

type RelplanErrorCode int

const (
	// DuplicateObjectError indicates an attempt to register a table, or a
	// column within a table, that already exists.
	DuplicateObjectError RelplanErrorCode = iota
	// NoSuchObjectError indicates a catalog lookup for a table that was never
	// registered.
	NoSuchObjectError
	// UnresolvedTableError is returned by the plan builder when a FROM or JOIN
	// clause names a table that the catalog does not know.
	UnresolvedTableError
	// UnresolvedColumnError is returned by the plan builder when an identifier
	// does not match any column of its enclosing scope.
	UnresolvedColumnError
	// AmbiguousColumnError is returned when an unqualified identifier matches
	// columns of more than one table in scope.
	AmbiguousColumnError
	// UnsupportedSyntaxError marks statements or clauses the compiler does not
	// plan (aggregation, ordering, subqueries, ...).
	UnsupportedSyntaxError
	// OptimizationDivergedError indicates the rewriter hit its iteration cap.
	// With the built-in rule set this is an internal defect.
	OptimizationDivergedError
	// InvalidPlanError indicates a plan tree that violates a structural
	// invariant, such as a column reference outside its input's arity.
	InvalidPlanError
)

func (ec RelplanErrorCode) String() string {
	switch ec {
	case DuplicateObjectError:
		return "DuplicateObjectError"
	case NoSuchObjectError:
		return "NoSuchObjectError"
	case UnresolvedTableError:
		return "UnresolvedTableError"
	case UnresolvedColumnError:
		return "UnresolvedColumnError"
	case AmbiguousColumnError:
		return "AmbiguousColumnError"
	case UnsupportedSyntaxError:
		return "UnsupportedSyntaxError"
	case OptimizationDivergedError:
		return "OptimizationDivergedError"
	case InvalidPlanError:
		return "InvalidPlanError"
	}
	return "unknown"
}

// RelplanError is the custom error type for the plan compiler.
// It wraps a specific RelplanErrorCode with a detailed message so callers can
// tell resolution failures (fix the query or the catalog) apart from internal
// defects without matching on strings.
type RelplanError struct {
	Code      RelplanErrorCode
	ErrString string
}

func (e RelplanError) Error() string {
	return fmt.Sprintf("err: %s; msg: %s", e.Code.String(), e.ErrString)
}

// NewError builds a RelplanError with a formatted message.
func NewError(code RelplanErrorCode, format string, args ...any) RelplanError {
	return RelplanError{Code: code, ErrString: fmt.Sprintf(format, args...)}
}

// IsCode reports whether err, or any error it wraps, is a RelplanError with
// the given code.
func IsCode(err error, code RelplanErrorCode) bool {
	var re RelplanError
	return errors.As(err, &re) && re.Code == code
}
