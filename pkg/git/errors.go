package git

import (
	"errors"
	"fmt"
)

var (
	ErrWorkspace = errors.New("could not create workspace")
	ErrClone     = errors.New("could not clone repository")
	ErrOpen      = errors.New("could not open repository")
	ErrBranches  = errors.New("branch enumeration failed")
	ErrHistory   = errors.New("commit history walk failed")
	ErrTree      = errors.New("snapshot tree walk failed")
)

// ResolutionError reports that no usable repository could be obtained for Input.
// Err wraps ErrWorkspace or ErrClone.
type ResolutionError struct {
	Input string
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %q: %v", e.Input, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Stage names the analysis stage an error came from, or "" if it is not one of ours.
func Stage(err error) string {
	var resolutionErr *ResolutionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &resolutionErr):
		return "resolve"
	case errors.Is(err, ErrBranches):
		return "branches"
	case errors.Is(err, ErrHistory):
		return "history"
	case errors.Is(err, ErrTree):
		return "tree"
	case errors.Is(err, ErrOpen):
		return "open"
	}
	return ""
}
