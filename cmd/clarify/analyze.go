package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func analyzeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze [prompt]",
		Short: "Score a prompt for vagueness without enhancing it",
		Args:  cobra.MaximumNArgs(1),
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

			svc, err := initVagueness(ctx, store)
			if err != nil {
				return err
			}

			result := svc.Analyze(prompt)
			out := cmd.OutOrStdout()

			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(result)
			}

			fmt.Fprintf(out, "Score:      %d / 100 (%s)\n", result.Score, result.Source)
			fmt.Fprintf(out, "Threshold:  %d\n", svc.Threshold())
			if result.IsVague(svc.Threshold()) {
				fmt.Fprintln(out, "Verdict:    vague, would be enhanced")
			} else {
				fmt.Fprintln(out, "Verdict:    specific, would be skipped")
			}
			if result.Confidence > 0 {
				fmt.Fprintf(out, "Confidence: %.2f\n", result.Confidence)
			}
			for _, issue := range result.Issues {
				fmt.Fprintf(out, "  - [%s] %s: %s\n", issue.Severity, issue.Type, issue.Description)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the analysis as JSON")
	return cmd
}
