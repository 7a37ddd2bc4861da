package cmd

import (
	"errors"
	"fmt"
)

// ExitError carries a process exit code out of a command. A nil Err means
// the command already reported the problem to the user.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by Execute to a process exit code. Errors
// that are not ExitErrors (bad flags, bad config) map to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return 1
}

// Reported tells whether err was already shown to the user.
func Reported(err error) bool {
	var ee *ExitError
	return errors.As(err, &ee) && ee.Err == nil
}
