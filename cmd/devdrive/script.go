package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bgricker/devdrive/internal/config"
	"github.com/bgricker/devdrive/internal/lock"
	"github.com/bgricker/devdrive/internal/manifest"
	"github.com/bgricker/devdrive/internal/output"
	"github.com/bgricker/devdrive/internal/runner"
	"github.com/bgricker/devdrive/internal/sequencer"
)

func newScriptCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeScript(cmd, name)
		},
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run NAME",
		Short: "Execute a script defined in the manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeScript(cmd, args[0])
		},
	}
}

func executeScript(cmd *cobra.Command, name string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := newLogger(cmd, cfg)

	registry, manifestPath, err := manifest.Load(root, cfg.Manifest)
	if err != nil {
		return err
	}

	if !cfg.NoLock && !cfg.DryRun {
		held, err := lock.Acquire(root, log)
		if err != nil {
			return err
		}
		defer held.Release()
	}

	execRunner := runner.New(runner.Options{
		Dir:    root,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})
	seq := sequencer.New(sequencer.Options{
		Registry: registry,
		Runner:   execRunner,
		DryRun:   cfg.DryRun,
		Stderr:   cmd.ErrOrStderr(),
		Logger:   log,
	})

	trace, err := seq.Execute(cmd.Context(), name)
	if err != nil {
		return err
	}

	if err := renderTrace(cmd, cfg, manifestPath, trace); err != nil {
		return err
	}

	if code := trace.Summary.ExitCode; code != 0 {
		return &exitError{code: code, msg: fmt.Sprintf("script %q failed with exit code %d", name, code)}
	}
	return nil
}

func renderTrace(cmd *cobra.Command, cfg config.Config, manifestPath string, trace sequencer.Trace) error {
	switch strings.ToLower(cfg.Format) {
	case config.FormatPretty:
		return output.NewPretty(cmd.OutOrStdout()).RenderTrace(trace)
	case config.FormatJSON:
		return output.NewJSON(cmd.OutOrStdout()).Render(output.Report{
			Manifest: manifestPath,
			Steps:    trace.Results,
			Summary:  &trace.Summary,
		})
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}
}

func newLogger(cmd *cobra.Command, cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

func rootDir() (string, error) {
	root, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determine working directory: %w", err)
	}
	return root, nil
}
