package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sapec/internal/config"
	"sapec/internal/diag"
	"sapec/internal/env"
	"sapec/internal/mode"
)

// appEnv is built once per invocation by the root PersistentPreRunE.
var appEnv *env.Env

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return cfg, err
	}
	if path == "" {
		found, ok, err := config.Find(".")
		if err != nil {
			return cfg, err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	if color, _ := cmd.Flags().GetString("color"); color != "" {
		if _, err := diag.ParseColorMode(color); err != nil {
			return cfg, err
		}
		cfg.Diagnostics.Color = color
	}
	if cmd.Flags().Changed("memory-limit") {
		limit, err := cmd.Flags().GetUint64("memory-limit")
		if err != nil {
			return cfg, err
		}
		cfg.Memory.Limit = limit
	}
	return cfg, nil
}

// modeFlags collects mode bits requested on the command line.
func modeFlags(cmd *cobra.Command) ([]mode.Bit, error) {
	var bits []mode.Bit
	for _, b := range []mode.Bit{mode.Verbose, mode.Info, mode.SapWin, mode.Binary} {
		on, err := cmd.Flags().GetBool(b.String())
		if err != nil {
			return nil, err
		}
		if on {
			bits = append(bits, b)
		}
	}
	extra, err := cmd.Flags().GetStringSlice("mode")
	if err != nil {
		return nil, err
	}
	for _, name := range extra {
		b, err := mode.ParseBit(name)
		if err != nil {
			return nil, err
		}
		if b == mode.Runnable || b == mode.Help {
			return nil, fmt.Errorf("mode %q is managed by sapec itself", name)
		}
		bits = append(bits, b)
	}
	return bits, nil
}

func setupEnv(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	bits, err := modeFlags(cmd)
	if err != nil {
		return err
	}
	e, err := env.New(env.Options{
		Config: cfg,
		Out:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	for _, b := range bits {
		e.Flags.Set(b)
	}
	e.Flags.SetRunnable()
	if cfg.Path != "" {
		e.Verbosef("config: %s\n", cfg.Path)
	}
	e.Verbosef("modes: %s\n", e.Flags)
	appEnv = e
	return nil
}
