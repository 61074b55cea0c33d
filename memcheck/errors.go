package memcheck

import (
	"errors"
	"fmt"
)

// ErrCompilerNotFound means no compiler was available in any backend; no
// invocation was attempted.
var ErrCompilerNotFound = errors.New("компилятор GCC не найден: установите GCC в WSL или MinGW")

// ValidationError reports rejected user input. Nothing was executed.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Path)
}

// IsValidation reports whether err is a user input validation error, as
// opposed to a failure of an external tool.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
