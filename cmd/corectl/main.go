// Command corectl is the CLI client for corectld's admin HTTP surface.
package main

import (
	"os"

	"github.com/marmos91/corectl/cmd/corectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintErr("Error: %v", err)
		os.Exit(1)
	}
}
