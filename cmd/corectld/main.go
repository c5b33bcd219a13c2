// Command corectld runs the entity handle server, the read/take/peek loan
// pipeline and the cooperative FSM control loop as a daemon process.
package main

import (
	"os"

	"github.com/marmos91/corectl/cmd/corectld/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintErr("Error: %v", err)
		os.Exit(1)
	}
}
