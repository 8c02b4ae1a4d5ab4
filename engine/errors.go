package engine

import "errors"

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
// Error() strings are human-readable and may evolve.
type Kind string

const (
	// KindUnauthorized: the caller lacks the role the operation requires.
	KindUnauthorized Kind = "Unauthorized"
	// KindNotFound: the action id is unknown. Performed and discarded
	// actions are removed, so operating on them is indistinguishable from
	// an id that never existed.
	KindNotFound Kind = "NotFound"
	// KindQuorumNotMet: perform was attempted before the action was ready.
	KindQuorumNotMet Kind = "QuorumNotMet"
	// KindInvalidQuorum: a quorum of zero or above the board size.
	KindInvalidQuorum Kind = "InvalidQuorum"
	// KindQuorumUnreachable: a demotion would leave fewer board members
	// than the current quorum requires.
	KindQuorumUnreachable Kind = "QuorumUnreachable"
	// KindNothingToRemove: RemoveUser targeted an account with no role.
	KindNothingToRemove Kind = "NothingToRemove"
	// KindInvalidCall: a call/deploy payload is malformed where a field is
	// semantically required. Raised at execution time, not proposal time.
	KindInvalidCall Kind = "InvalidCall"
	// KindInvalidConfig: the engine was constructed with unusable state.
	KindInvalidConfig Kind = "InvalidConfig"
	KindInternal      Kind = "Internal"
)

// Error is the engine's structured error type.
//
// RuleID is a stable identifier (e.g. MSIG-AUTH-001) naming the violated
// invariant. Message is intended for humans; do not match on it.
type Error struct {
	Kind    Kind
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}

// ErrKind extracts the Kind of a structured error, or "" if err is not one.
func ErrKind(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}
