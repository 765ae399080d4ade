package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sapec/internal/exitcodes"
	"sapec/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "sapec",
	Short: "Symbolic analysis of electric circuits",
	Long:  `sapec computes symbolic network functions of linear circuits`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupEnv(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		appEnv.Flags.SetHelp()
		return cmd.Help()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to sapec.toml or a YAML config (default: search upwards for sapec.toml)")
	rootCmd.PersistentFlags().String("color", "", "colorize diagnostics (auto|on|off)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print verbose progress on stderr")
	rootCmd.PersistentFlags().Bool("info", false, "print informational output")
	rootCmd.PersistentFlags().Bool("sapwin", false, "read and write SapWin compatible files")
	rootCmd.PersistentFlags().Bool("binary", false, "use binary result files")
	rootCmd.PersistentFlags().StringSlice("mode", nil, "extra modes to turn on (verbose|info|sapwin|binary)")
	rootCmd.PersistentFlags().Uint64("memory-limit", 0, "largest single allocation in bytes (0 = physical memory)")
}

// main executes the root command. If command execution returns an error,
// the process exits with status code 1.
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcodes.Failure)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
