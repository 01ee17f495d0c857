package repository

// Error is a storage-level failure with a stable machine-readable code.
type Error struct {
	code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Code returns the stable machine-readable error code.
func (e *Error) Code() string { return e.code }

var (
	// ErrUserNotFound is returned when the requested user is not registered.
	ErrUserNotFound = &Error{code: "user_not_found", msg: "user not found"}
	// ErrUserExists is returned when registration hits an existing user.
	ErrUserExists = &Error{code: "user_exists", msg: "user already registered"}
)
