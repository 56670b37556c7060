package main

import (
	"os"

	"mit.edu/dsg/relplan/cmd/relplan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
