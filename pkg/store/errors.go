package store

import "fmt"

// Error is the typed failure every state-changing operation returns.
// Codes are stable API values: the 1xx range belongs to profile
// operations, the 2xx range to link operations.
type Error struct {
	Code    uint
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s (code %d)", e.Message, e.Code)
}

// Is lets errors.Is match by code, so wrapped errors still compare
// against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrNotAuthorized   = &Error{Code: 100, Message: "not authorized"}
	ErrProfileNotFound = &Error{Code: 101, Message: "profile not found"}
	ErrProfileExists   = &Error{Code: 102, Message: "profile already exists"}

	ErrNotLinkOwner     = &Error{Code: 200, Message: "not link owner"}
	ErrLinkNotFound     = &Error{Code: 201, Message: "link not found"}
	ErrCapacityExceeded = &Error{Code: 202, Message: "link capacity exceeded"}
)
