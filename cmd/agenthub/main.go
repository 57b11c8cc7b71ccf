package main

import (
	"os"

	"agenthub/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
