package main

import (
	"os"

	"github.com/fieldforge/jobsync/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
