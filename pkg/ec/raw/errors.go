package raw

import "errors"

var (
	// ErrInvalidInput indicates the hex sentence cannot be decoded
	// into a valid request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrOversizedWrite indicates the input text exceeds the staging
	// buffer capacity.
	ErrOversizedWrite = errors.New("input exceeds buffer capacity")
	// ErrInvalidOffset indicates a read at a negative offset.
	ErrInvalidOffset = errors.New("invalid read offset")
)
