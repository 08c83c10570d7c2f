package main

import (
	"fmt"
	"os"

	"github.com/temirov/repofleet/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main runs repofleet. Per-repository failures are reported by the subcommands
// themselves; only fatal errors reach this point and exit with status 1.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
