package main

import (
	"os"

	"rtcclock-go/cmd/rtcclock/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
