package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent enhancements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			enhancements, err := store.ListEnhancements(ctx, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(enhancements) == 0 {
				fmt.Fprintln(out, "No enhancements recorded yet.")
				return nil
			}

			for _, e := range enhancements {
				fmt.Fprintf(out, "%s  score %d  %s\n", e.CreatedAt, e.ScoreBefore, e.Model)
				fmt.Fprintf(out, "  before: %s\n", e.Prompt)
				fmt.Fprintf(out, "  after:  %s\n\n", e.Enhanced)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of records to show (0 for all)")
	return cmd
}
