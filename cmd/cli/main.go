package main

import (
	"os"

	"github.com/branchd-dev/remotecfg/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
