// Package cli implements the triage-cli commands.
package cli

import (
	"io"
	"os"
	"strings"

	"github.com/mikey/email-triage/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globalFlags struct {
	configPath string
	verbose    bool
	jsonLog    bool
}

// RootCmd returns the triage-cli root command
func RootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:          "triage-cli",
		Short:        "Extract, normalize and triage emails from the command line",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to config file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().BoolVar(&flags.jsonLog, "json-log", false, "Output logs in JSON format")

	root.AddCommand(
		extractCmd(flags),
		normalizeCmd(),
		triageCmd(flags),
	)
	return root
}

func (f *globalFlags) logger() *zap.Logger {
	return logging.InitConsoleLogger(f.verbose, f.jsonLog)
}

// readInput returns the single positional argument, or stdin when there is none
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// openInput opens path, or stdin for "-"
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path)
}
