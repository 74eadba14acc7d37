package main

import (
	"os"

	"github.com/mcpgate/mcpgate/internal/cli/commands"
	"github.com/mcpgate/mcpgate/internal/cli/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}
