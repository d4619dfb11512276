package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/clarify/internal/model"
	"github.com/spf13/cobra"
)

func enhanceCmd() *cobra.Command {
	var (
		activeFile string
		showScores bool
	)

	cmd := &cobra.Command{
		Use:   "enhance [prompt]",
		Short: "Rewrite a vague prompt into a specific, actionable one",
		Long: `Analyzes a prompt for vagueness and, when it scores above the
threshold, gathers workspace context and asks the configured provider
chain to rewrite it. Reads the prompt from stdin when no argument is
given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			eng, _, err := buildEngine(ctx, store, activeFile)
			if err != nil {
				return err
			}

			result := eng.ProcessPrompt(ctx, prompt)
			return printResult(cmd.OutOrStdout(), result, showScores)
		},
	}

	cmd.Flags().StringVar(&activeFile, "file", "", "path of the file being worked on, for context")
	cmd.Flags().BoolVar(&showScores, "verbose", false, "print the vagueness analysis alongside the rewrite")
	return cmd
}

// readPrompt takes the prompt from the argument list or, failing that,
// from stdin.
func readPrompt(args []string) (string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("no prompt given: pass one as an argument or on stdin")
	}
	return prompt, nil
}

func printResult(w io.Writer, result model.WorkflowResult, showScores bool) error {
	switch {
	case result.Skipped():
		fmt.Fprintf(w, "Prompt is already specific (score %d); no enhancement needed.\n", result.Analysis.Score)
		return nil

	case result.Failed():
		return fmt.Errorf("%s", result.Message)

	default:
		if showScores {
			fmt.Fprintf(w, "Vagueness score: %d (%s)\n", result.Analysis.Score, result.Analysis.Source)
			for _, issue := range result.Analysis.Issues {
				fmt.Fprintf(w, "  - %s: %s\n", issue.Type, issue.Description)
			}
			if result.Cached {
				fmt.Fprintln(w, "Served from cache.")
			} else {
				fmt.Fprintf(w, "Model: %s (%d tokens)\n", result.Rewrite.Model, result.Rewrite.TokensUsed)
			}
			b := result.Rewrite.Improvements
			fmt.Fprintf(w, "Improvements: specificity=%t actionable=%t issues=%t on-topic=%t\n",
				b.AddedSpecificity, b.MadeActionable, b.AddressedIssues, b.StayedOnTopic)
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, result.Rewrite.Enhanced)
		return nil
	}
}
