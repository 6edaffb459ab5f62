package main

import (
	"os"

	"github.com/mikey/email-triage/internal/cli"
)

func main() {
	if err := cli.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
