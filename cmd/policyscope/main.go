package main

import (
	"fmt"
	"os"

	"github.com/policyscope/policyscope/cmd/policyscope/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
