package version

import (
	"github.com/mitchellh/cli"

	"github.com/complyforge/docregistry/internal/version"
)

// Command prints the build version.
type Command struct {
	UI cli.Ui
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return "Usage: docregistry version"
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.Version)
	return 0
}
