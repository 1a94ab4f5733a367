package main

import (
	"fmt"
	"os"

	"draftly/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
