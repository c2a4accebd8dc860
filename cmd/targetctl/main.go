// Command targetctl is the operator CLI: it inspects the workspace catalog,
// edits the created-activity ledger and resolves offers across workspaces
// using the same configuration as the server.
package main

import (
	"os"

	"targetkit/cmd/targetctl/commands"
)

var version = "dev"

func main() {
	if err := commands.Execute(version); err != nil {
		os.Exit(1)
	}
}
