package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/complyforge/docregistry/internal/cmd/commands/server"
	"github.com/complyforge/docregistry/internal/cmd/commands/version"
)

// Commands is the mapping of all available CLI commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	Commands = map[string]cli.CommandFactory{
		"server": func() (cli.Command, error) {
			return &server.Command{
				Log: log,
				UI:  ui,
			}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{
				UI: ui,
			}, nil
		},
	}
}
