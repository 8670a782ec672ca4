// Clarity - command line client for the local journal, plan and chat
package main

import (
	"fmt"
	"os"

	"github.com/SelJom/ClarityAI/cmd/clarity/commands"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
