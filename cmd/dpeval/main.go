package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Exit codes for different failure modes
const (
	ExitSuccess       = 0 // Reports written
	ExitNoComparisons = 1 // No comparable pairs found
	ExitError         = 2 // Configuration or runtime error
)

// NoComparisonsError indicates the pass ran successfully but no source run
// matched any target run, so there is nothing to report.
type NoComparisonsError struct {
	Message string
}

func (e *NoComparisonsError) Error() string {
	return e.Message
}

func main() {
	_ = godotenv.Load()

	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var noCmp *NoComparisonsError
		if errors.As(err, &noCmp) {
			os.Exit(ExitNoComparisons)
		}

		os.Exit(ExitError)
	}
}
