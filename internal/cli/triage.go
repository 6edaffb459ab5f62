package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mikey/email-triage/internal/adapters/intake"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/di"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type triageFlags struct {
	emlPath      string
	sender       string
	classifyOnly bool
	timeout      time.Duration
}

func triageCmd(flags *globalFlags) *cobra.Command {
	tf := &triageFlags{}

	cmd := &cobra.Command{
		Use:   "triage [content-or-path]",
		Short: "Classify an email and draft a reply with the configured model",
		Long: "The email is given as content, a .txt/.pdf path, or with --eml as a raw " +
			"RFC 5322 message (use - for stdin).",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, summary, err := tf.request(cmd, args)
			if err != nil {
				return err
			}

			logger := flags.logger()
			defer logger.Sync()

			container, err := di.BuildContainer(di.Options{ConfigPath: flags.configPath, Logger: logger})
			if err != nil {
				return fmt.Errorf("failed to build dependency container: %w", err)
			}

			return container.Invoke(func(service *core.TriageService, generator core.TextGenerator, cacheRepo core.CacheRepository) error {
				defer closeResources(logger, generator, cacheRepo)

				ctx, cancel := context.WithTimeout(cmd.Context(), tf.timeout)
				defer cancel()
				return runTriage(ctx, cmd.OutOrStdout(), service, req, summary, tf.classifyOnly, flags.verbose)
			})
		},
	}

	cmd.Flags().StringVar(&tf.emlPath, "eml", "", "Read a raw email message from this file (- for stdin)")
	cmd.Flags().StringVar(&tf.sender, "sender", "", "Sender address used for the trusted-domain check")
	cmd.Flags().BoolVar(&tf.classifyOnly, "classify-only", false, "Skip drafting a reply")
	cmd.Flags().DurationVar(&tf.timeout, "timeout", 2*time.Minute, "Overall timeout for model calls")
	return cmd
}

// request builds the triage request from the arguments and flags
func (tf *triageFlags) request(cmd *cobra.Command, args []string) (core.TriageRequest, *core.Email, error) {
	if tf.emlPath == "" {
		raw, err := readInput(cmd, args)
		if err != nil {
			return core.TriageRequest{}, nil, fmt.Errorf("failed to read input: %w", err)
		}
		return core.TriageRequest{Content: &raw, Sender: tf.sender}, nil, nil
	}

	if len(args) > 0 {
		return core.TriageRequest{}, nil, fmt.Errorf("--eml cannot be combined with a content argument")
	}

	r, err := openInput(cmd, tf.emlPath)
	if err != nil {
		return core.TriageRequest{}, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return core.TriageRequest{}, nil, fmt.Errorf("failed to read input file: %w", err)
	}

	email, err := intake.ParseMessage(data)
	if err != nil {
		return core.TriageRequest{}, nil, err
	}

	sender := tf.sender
	if sender == "" {
		sender = email.From
	}
	return core.TriageRequest{Content: &email.Body, Sender: sender, Inline: true}, email, nil
}

func runTriage(
	ctx context.Context,
	w io.Writer,
	service *core.TriageService,
	req core.TriageRequest,
	email *core.Email,
	classifyOnly bool,
	verbose bool,
) error {
	if email != nil {
		fmt.Fprintf(w, "\n=== Email Summary ===\n")
		fmt.Fprintf(w, "From: %s\n", email.From)
		fmt.Fprintf(w, "To: %s\n", email.To)
		fmt.Fprintf(w, "Subject: %s\n", email.Subject)
		fmt.Fprintf(w, "Body length: %d bytes\n", len(email.Body))

		// Print body preview if verbose
		if verbose {
			preview := []rune(email.Body)
			if len(preview) > 500 {
				preview = append(preview[:500], []rune("...")...)
			}
			fmt.Fprintf(w, "\nBody preview:\n%s\n", string(preview))
		}
	}

	fmt.Fprintf(w, "\n=== Analysis ===\n")
	startTime := time.Now()

	if classifyOnly {
		classification, err := service.Classify(ctx, req)
		if err != nil {
			return errors.New(core.DescribeError(err))
		}
		fmt.Fprintf(w, "\n=== Results ===\n")
		fmt.Fprintf(w, "Category: %s (%s)\n", classification.Category.Label(), classification.Category)
		fmt.Fprintf(w, "Confidence: %.4f\n", classification.Confidence)
		fmt.Fprintf(w, "Reason: %s\n", classification.Reason)
		fmt.Fprintf(w, "Model used: %s\n", classification.ModelUsed)
		fmt.Fprintf(w, "Cached: %t\n", classification.Cached)
		fmt.Fprintf(w, "Processing time: %v\n", time.Since(startTime))
		return nil
	}

	result, err := service.Triage(ctx, req)
	if err != nil {
		return errors.New(core.DescribeError(err))
	}
	fmt.Fprintf(w, "\n=== Results ===\n")
	fmt.Fprintf(w, "Category: %s (%s)\n", result.Label, result.Category)
	fmt.Fprintf(w, "Confidence: %.4f\n", result.Confidence)
	fmt.Fprintf(w, "Reason: %s\n", result.Reason)
	fmt.Fprintf(w, "Model used: %s\n", result.ModelUsed)
	fmt.Fprintf(w, "Cached: %t\n", result.Cached)
	fmt.Fprintf(w, "Processing time: %v\n", result.Duration)
	fmt.Fprintf(w, "\n=== Suggested Reply ===\n%s\n", result.Reply)
	return nil
}

func closeResources(logger *zap.Logger, generator core.TextGenerator, cacheRepo core.CacheRepository) {
	if closer, ok := generator.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}
}
