package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// AlreadyVotedError is the idempotent rejection of a repeat vote. It is
// an expected outcome of concurrent or repeated submissions, surfaced to
// the caller as information rather than logged as a failure.
type AlreadyVotedError struct {
	ReportID string
}

func (e AlreadyVotedError) Error() string {
	if e.ReportID == "" {
		return "already voted"
	}
	return fmt.Sprintf("already voted on report %s", e.ReportID)
}

func (e AlreadyVotedError) Is(target error) bool {
	_, ok := target.(AlreadyVotedError)
	if ok {
		return true
	}
	_, ok = target.(*AlreadyVotedError)
	return ok
}

var ErrAlreadyVoted = AlreadyVotedError{}

// UnauthorizedError means the request carried no usable identity.
type UnauthorizedError struct{}

func (e UnauthorizedError) Error() string { return "unauthorized" }

var ErrUnauthorized = UnauthorizedError{}

// ForbiddenError means the actor is authenticated but lacks the role the
// operation requires.
type ForbiddenError struct {
	Actor string
}

func (e ForbiddenError) Error() string {
	if e.Actor == "" {
		return "forbidden"
	}
	return fmt.Sprintf("actor %s lacks required role", e.Actor)
}

func (e ForbiddenError) Is(target error) bool {
	_, ok := target.(ForbiddenError)
	if ok {
		return true
	}
	_, ok = target.(*ForbiddenError)
	return ok
}

var ErrForbidden = ForbiddenError{}

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field  string
	Detail string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed"
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

var ErrValidation = ValidationError{}

// StoreError wraps a transient persistence failure. Callers may retry;
// the vote ledger guarantees no partial write survives one.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store error during %s", e.Op)
	}
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error { return e.Err }

func (e StoreError) Is(target error) bool {
	_, ok := target.(StoreError)
	if ok {
		return true
	}
	_, ok = target.(*StoreError)
	return ok
}

var ErrStore = StoreError{}
