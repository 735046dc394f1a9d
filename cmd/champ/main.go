package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess  = 0 // Run completed; promotion, rejection, and skip all count
	ExitRejected = 1 // Candidate was rejected and --strict was set
	ExitError    = 2 // Configuration or runtime error
)

// RejectionError indicates the evaluation ran successfully but the
// candidate did not qualify for promotion, and the caller asked for that
// to be an error.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var rejectionErr *RejectionError
		if errors.As(err, &rejectionErr) {
			os.Exit(ExitRejected)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
