package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgricker/devdrive/internal/config"
)

func gatherFlags(cmd *cobra.Command) (config.FlagValues, error) {
	flags := cmd.Flags()
	var values config.FlagValues

	if flags.Changed("manifest") {
		v, err := flags.GetString("manifest")
		if err != nil {
			return values, fmt.Errorf("parse --manifest: %w", err)
		}
		values.Manifest = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("format") {
		v, err := flags.GetString("format")
		if err != nil {
			return values, fmt.Errorf("parse --format: %w", err)
		}
		values.Format = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("dry-run") {
		v, err := flags.GetBool("dry-run")
		if err != nil {
			return values, fmt.Errorf("parse --dry-run: %w", err)
		}
		values.DryRun = config.BoolFlag{Value: v, Set: true}
	}

	if flags.Changed("verbose") {
		v, err := flags.GetBool("verbose")
		if err != nil {
			return values, fmt.Errorf("parse --verbose: %w", err)
		}
		values.Verbose = config.BoolFlag{Value: v, Set: true}
	}

	if flags.Changed("no-lock") {
		v, err := flags.GetBool("no-lock")
		if err != nil {
			return values, fmt.Errorf("parse --no-lock: %w", err)
		}
		values.NoLock = config.BoolFlag{Value: v, Set: true}
	}

	return values, nil
}

func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	root, err := rootDir()
	if err != nil {
		return config.Config{}, "", err
	}

	flags, err := gatherFlags(cmd)
	if err != nil {
		return config.Config{}, "", err
	}

	cfg, err := config.Load(root, flags.Manifest.Value)
	if err != nil {
		return config.Config{}, "", err
	}
	config.ApplyFlags(&cfg, flags)

	return cfg, root, nil
}
