package puzzles

// Error is a puzzle-flow error carrying a stable machine code. The code
// surfaces as err_code in handler summary logs.
type Error struct {
	code string
	msg  string
}

// Error returns the human-readable message.
func (e *Error) Error() string { return e.msg }

// Code returns the stable machine-readable error code.
func (e *Error) Code() string { return e.code }

var (
	// ErrAlreadyActive rejects starting a new puzzle while one is in progress.
	ErrAlreadyActive = &Error{code: "already_active", msg: "a puzzle is already in progress"}
	// ErrNotInSession rejects hint/answer/cancel requests without an active session.
	ErrNotInSession = &Error{code: "not_in_session", msg: "no active puzzle session"}
	// ErrHintsExhausted rejects hint requests past the per-puzzle cap.
	ErrHintsExhausted = &Error{code: "hints_exhausted", msg: "all hints for this puzzle have been used"}
	// ErrVerifierUnavailable marks a failed verification call; the attempt is
	// not consumed and the caller should retry the same answer.
	ErrVerifierUnavailable = &Error{code: "verifier_unavailable", msg: "answer verification is temporarily unavailable"}
	// ErrWrongState rejects an operation that does not match the session state.
	ErrWrongState = &Error{code: "wrong_state", msg: "operation not allowed in the current session state"}
)
