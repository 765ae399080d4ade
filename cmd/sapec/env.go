package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"sapec/internal/codec"
	"sapec/internal/version"
)

// envReport is the snapshot written by `sapec env`.
type envReport struct {
	Tool        string   `toml:"tool" msgpack:"tool"`
	Version     string   `toml:"version" msgpack:"version"`
	Modes       []string `toml:"modes" msgpack:"modes"`
	Color       string   `toml:"color" msgpack:"color"`
	MemoryLimit uint64   `toml:"memory_limit" msgpack:"memory_limit"`
	Config      string   `toml:"config,omitempty" msgpack:"config,omitempty"`
}

var envOut string

func init() {
	envCmd.Flags().StringVarP(&envOut, "out", "o", "", "write the report to a file instead of stdout")
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show the resolved runtime environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !appEnv.Ready() {
			return errors.New("environment is not ready")
		}
		report := collectEnvReport()
		format := codec.FormatFor(*appEnv.Flags)

		if appEnv.Flags.Info() {
			fmt.Fprintf(cmd.ErrOrStderr(), "sapec %s: modes %s, %s output\n", version.Colored(), appEnv.Flags, format)
		}

		if envOut != "" {
			if err := codec.WriteFile(envOut, format, report); err != nil {
				appEnv.Diag.Errorf("cannot write %s: %v", envOut, err)
				return err
			}
			appEnv.Verbosef("wrote %s\n", envOut)
			return nil
		}
		return writeEnvReport(cmd.OutOrStdout(), format, report)
	},
}

func collectEnvReport() envReport {
	bits := appEnv.Flags.Bits()
	modes := make([]string, len(bits))
	for i, b := range bits {
		modes[i] = b.String()
	}
	return envReport{
		Tool:        "sapec",
		Version:     version.Version,
		Modes:       modes,
		Color:       string(appEnv.Config.ColorMode()),
		MemoryLimit: appEnv.Config.Memory.Limit,
		Config:      appEnv.Config.Path,
	}
}

func writeEnvReport(out io.Writer, format codec.Format, report envReport) error {
	if format == codec.Binary {
		if f, ok := out.(*os.File); ok && isTerminal(f) {
			appEnv.Diag.Warning("binary output suppressed on a terminal; use --out")
			return nil
		}
	}
	return codec.Encode(out, format, report)
}
