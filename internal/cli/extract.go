package cli

import (
	"fmt"

	"github.com/mikey/email-triage/internal/extract"
	"github.com/spf13/cobra"
)

func extractCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "extract [content-or-path]",
		Short: "Print the plain text of raw content, HTML, or a .txt/.pdf file",
		Long: "Values ending in .txt or .pdf are read as file paths; anything else is " +
			"treated as the content itself. Reads stdin when no argument is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			logger := flags.logger()
			defer logger.Sync()

			text := extract.NewExtractor(logger).ExtractString(raw)
			if text == "" {
				return fmt.Errorf("no text could be extracted")
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
