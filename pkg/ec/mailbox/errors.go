package mailbox

import (
	"errors"
	"fmt"
)

// ErrBadFrame indicates a malformed or oversized response frame.
var ErrBadFrame = errors.New("bad response frame")

// StatusError carries a nonzero status code reported by the EC.
type StatusError struct {
	Code byte
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("EC status 0x%02x", e.Code)
}
