// Package main provides the fprime-extras command.
package main

import (
	"os"

	"github.com/SterlingPeet/fprime-extras/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
