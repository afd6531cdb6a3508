package main

import (
	"fmt"
	"os"

	"github.com/alanmeadows/cleancheck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cleancheck:", err)
		os.Exit(cli.ExitCode(err))
	}
}
