package main

import (
	"os"

	"github.com/parley-dev/parley/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
