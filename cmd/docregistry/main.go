package main

import (
	"os"

	"github.com/complyforge/docregistry/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
