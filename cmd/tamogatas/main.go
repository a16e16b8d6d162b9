package main

import (
	"os"

	"github.com/tamogatas-dev/tamogatas/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
