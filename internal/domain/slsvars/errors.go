package slsvars

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedSource = errors.New("unsupported variable source")
	errTooDeep           = errors.New("variable resolution too deep")
	errUnterminated      = errors.New("unterminated variable reference")
	errNotScalar         = errors.New("referenced value is not a scalar")
)

// UnresolvedError reports a reference none of whose alternatives resolved.
type UnresolvedError struct {
	Ref string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("cannot resolve ${%s}", e.Ref)
}
