package pixbuf

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySource is returned when an operation receives an image without pixels.
	ErrEmptySource = errors.New("source image is empty")
	// ErrUnsupportedDepth is returned for pixel depths an operation cannot handle.
	ErrUnsupportedDepth = errors.New("unsupported pixel depth")
	// ErrInvalidPolarity is returned when the polarity is neither high nor low.
	ErrInvalidPolarity = errors.New("invalid polarity")
	// ErrInvalidConnectivity is returned when the connectivity is neither 4 nor 8.
	ErrInvalidConnectivity = errors.New("invalid connectivity")
	// ErrOutOfBounds is returned when a coordinate lies outside the readable area.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
)

// OpError records the operation during which a pixel-group error happened.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// WrapOp wraps err in an *OpError for op. A nil err stays nil.
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}
