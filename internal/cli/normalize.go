package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mikey/email-triage/internal/textproc"
	"github.com/spf13/cobra"
)

func normalizeCmd() *cobra.Command {
	var (
		opts        = textproc.DefaultOptions()
		noLowercase bool
		tokens      bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "normalize [text]",
		Short: "Run the text normalization pipeline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			opts.Lowercase = !noLowercase
			for _, stage := range opts.UnsupportedStages() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: no %s table for language %q, stage skipped\n", stage, opts.Lang)
			}

			out := textproc.Preprocess(&text, opts, tokens)
			w := cmd.OutOrStdout()

			switch {
			case asJSON:
				enc := json.NewEncoder(w)
				enc.SetEscapeHTML(false)
				return enc.Encode(out)
			case tokens:
				fmt.Fprintln(w, strings.Join(out.Tokens, "\n"))
			default:
				fmt.Fprintln(w, out.Text)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Lang, "lang", textproc.DefaultLang, "Language of the stopword and lemma tables")
	cmd.Flags().BoolVar(&noLowercase, "no-lowercase", false, "Keep the original letter case")
	cmd.Flags().BoolVar(&opts.RemoveStopwords, "stopwords", false, "Remove stopwords")
	cmd.Flags().BoolVar(&opts.Lemmatize, "lemmatize", false, "Apply heuristic lemmatization")
	cmd.Flags().BoolVar(&opts.NormalizeNumbers, "numbers", false, "Replace numbers with a marker")
	cmd.Flags().BoolVar(&tokens, "tokens", false, "Print tokens, one per line")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}
