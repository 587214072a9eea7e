package main

import (
	"os"

	"github.com/CrowderSoup/kanban/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
