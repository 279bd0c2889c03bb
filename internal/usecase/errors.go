package usecase

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrFatalAssembly         = errors.New("fatal assembly failure")
)

// FetchError is returned once the retry budget for one endpoint is spent.
type FetchError struct {
	Endpoint   string
	Path       string
	Attempts   int
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "fetch %s failed after %d attempt(s)", e.Endpoint, e.Attempts)
	if e.Path != "" {
		fmt.Fprintf(&b, " path=%s", e.Path)
	}
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " status=%d", e.StatusCode)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *FetchError) Unwrap() error { return e.Cause }

// FatalAssemblyError aborts a run: without bootstrap or fixtures nothing can be written.
type FatalAssemblyError struct {
	Stage string
	Err   error
}

func (e *FatalAssemblyError) Error() string {
	return fmt.Sprintf("assemble dataset: %s: %v", e.Stage, e.Err)
}

func (e *FatalAssemblyError) Unwrap() error { return e.Err }

func (e *FatalAssemblyError) Is(target error) bool { return target == ErrFatalAssembly }

// PartialHistoryError records one player whose history could not be fetched.
// It is collected, never returned from a run.
type PartialHistoryError struct {
	PlayerID int64
	Err      error
}

func (e *PartialHistoryError) Error() string {
	return fmt.Sprintf("player history %d: %v", e.PlayerID, e.Err)
}

func (e *PartialHistoryError) Unwrap() error { return e.Err }

// WriteError reports one artifact that could not be persisted. Files written
// before it are kept.
type WriteError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s artifact %s: %v", e.Artifact, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
