package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func consentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consent",
		Short: "Manage consent for semantic workspace analysis",
		Long: `Semantic analysis reads the contents of the active file to extract
function and type names for context. It is off until explicitly
granted here, and can be revoked at any time.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "grant",
		Short: "Allow semantic analysis of the active file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return setConsent(cmd, true)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "revoke",
		Short: "Disallow semantic analysis",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return setConsent(cmd, false)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current consent decision",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			granted, err := store.GetConsent(ctx)
			if err != nil {
				return err
			}

			if granted {
				fmt.Fprintln(cmd.OutOrStdout(), "Semantic analysis: granted")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Semantic analysis: not granted")
			}
			return nil
		},
	})

	return cmd
}

func setConsent(cmd *cobra.Command, granted bool) error {
	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.SetConsent(ctx, granted); err != nil {
		return err
	}

	if granted {
		fmt.Fprintln(cmd.OutOrStdout(), "Semantic analysis enabled.")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Semantic analysis disabled.")
	}
	return nil
}
