package main

import (
	"os"

	"github.com/verkeep/verkeep/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
