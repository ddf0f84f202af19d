package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bgricker/devdrive/internal/config"
	"github.com/bgricker/devdrive/internal/manifest"
	"github.com/bgricker/devdrive/internal/output"
	"github.com/bgricker/devdrive/internal/sequencer"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scripts and their flattened command plans",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	registry, manifestPath, err := manifest.Load(root, cfg.Manifest)
	if err != nil {
		return err
	}

	seq := sequencer.New(sequencer.Options{Registry: registry})

	plans := make([]output.ScriptPlan, 0, len(registry.Names()))
	for _, name := range registry.Names() {
		plan, err := seq.Flatten(name)
		if err != nil {
			return err
		}
		plans = append(plans, output.ScriptPlan{Name: name, Plan: plan})
	}

	switch strings.ToLower(cfg.Format) {
	case config.FormatPretty:
		return output.NewPretty(cmd.OutOrStdout()).RenderList(plans)
	case config.FormatJSON:
		return output.NewJSON(cmd.OutOrStdout()).Render(output.Report{
			Manifest: manifestPath,
			Scripts:  plans,
		})
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}
}
