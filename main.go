package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/branchswitch/cmd/cli"
)

const (
	exitErrorTemplateConstant = "Fatal error: %v\n"
	failureExitCodeConstant   = 1
)

// main executes the branch-switch command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}

	var exitError cli.ExitError
	if errors.As(executionError, &exitError) {
		os.Exit(exitError.Code)
	}

	fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	os.Exit(failureExitCodeConstant)
}
