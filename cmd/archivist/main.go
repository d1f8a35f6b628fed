package main

import (
	"os"

	"github.com/bnema/archivist/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
