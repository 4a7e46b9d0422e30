package main

import (
	"os"

	"github.com/lernmar/lernmar/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
