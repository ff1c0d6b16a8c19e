package main

import (
	"fmt"
	"os"

	"github.com/hollis-dev/lensctl/internal/cli"
	"github.com/hollis-dev/lensctl/internal/logging"
)

func main() {
	logging.ConfigureRuntime()
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lensctl: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}
