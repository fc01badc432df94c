// Package main is the entry point for the standin CLI.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/standin/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
