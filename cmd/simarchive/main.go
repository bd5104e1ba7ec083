package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess       = 0 // Reports archived, or nothing to do
	ExitArchiveFailed = 1 // The archiving pass failed
	ExitError         = 2 // Usage or configuration error
)

// ArchiveFailureError indicates that the archiving pass started but could
// not complete.
type ArchiveFailureError struct {
	Message string
	Err     error
}

func (e *ArchiveFailureError) Error() string {
	return e.Message
}

func (e *ArchiveFailureError) Unwrap() error {
	return e.Err
}

func main() {
	os.Exit(run())
}

func run() int {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(err)
	}
	return ExitSuccess
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var archiveErr *ArchiveFailureError
	if errors.As(err, &archiveErr) {
		return ExitArchiveFailed
	}
	return ExitError
}
