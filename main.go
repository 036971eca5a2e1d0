package main

import (
	"os"

	"github.com/driftworks/devsess/cmd"
	"github.com/driftworks/devsess/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
