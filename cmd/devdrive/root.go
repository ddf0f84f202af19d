package main

import (
	"github.com/spf13/cobra"

	"github.com/bgricker/devdrive/internal/manifest"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "devdrive",
		Short:         "Devdrive sequences development environment lifecycle scripts",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	persistent := cmd.PersistentFlags()
	persistent.String("manifest", "", "manifest file (default .devdrive.yml|.devdrive.yaml|.devdrive.toml)")
	persistent.Bool("dry-run", false, "print the command plan without executing it")
	persistent.BoolP("verbose", "v", false, "log each step as it runs")
	persistent.String("format", "pretty", "output format (pretty|json)")
	persistent.Bool("no-lock", false, "skip the invocation lock")

	cmd.AddCommand(newScriptCmd(manifest.ScriptStart, "Bring up the container stack and apply pending migrations"))
	cmd.AddCommand(newScriptCmd(manifest.ScriptShutdown, "Revert the last migration and tear down the container stack"))
	cmd.AddCommand(newScriptCmd(manifest.ScriptTests, "Run the test suite between start and shutdown"))
	cmd.AddCommand(newScriptCmd(manifest.ScriptApp, "Run the application between start and shutdown"))
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
