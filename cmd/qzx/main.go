// Package main implements the go-qzx CLI (qzx).
// It provides commands for compiling qudit Clifford circuits into
// ZX-diagrams, reducing them to normal form, and extracting circuits back.
package main

import (
	"os"

	"github.com/qzx-dev/go-qzx/cmd/qzx/commands"
)

var (
	version   = "dev"
	buildTime = ""
)

func main() {
	commands.Version = version
	commands.BuildTime = buildTime
	commands.RootCmd.Version = version

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
