package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Veraticus/clarify/internal/model"
	"github.com/spf13/cobra"
)

func modelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage the trained vagueness model",
	}

	cmd.AddCommand(modelTrainCmd())
	cmd.AddCommand(modelExportCmd())
	cmd.AddCommand(modelImportCmd())
	cmd.AddCommand(modelResetCmd())
	cmd.AddCommand(modelStatusCmd())
	return cmd
}

func modelTrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train <examples.json>",
		Short: "Train the vagueness model from labeled examples",
		Long: `Trains the scoring model from a JSON array of labeled examples,
each {"prompt": "...", "score": 0-100}, and persists it. Training is
deterministic: the same examples always produce the same model.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read examples file: %w", err)
			}

			var examples []model.LabeledExample
			if err := json.Unmarshal(data, &examples); err != nil {
				return fmt.Errorf("failed to parse examples file: %w", err)
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

			if err := svc.Train(examples); err != nil {
				return err
			}
			if err := svc.SaveTo(ctx, store); err != nil {
				return fmt.Errorf("failed to persist trained model: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Trained on %d examples and saved.\n", len(examples))
			return nil
		},
	}
}

func modelExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <model.json>",
		Short: "Export the trained model to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			blob, err := svc.Export()
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], blob, 0600); err != nil {
				return fmt.Errorf("failed to write model file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported trained model to %s\n", args[0])
			return nil
		},
	}
}

func modelImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <model.json>",
		Short: "Import a previously exported model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read model file: %w", err)
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

			if err := svc.Import(blob); err != nil {
				return err
			}
			if err := svc.SaveTo(ctx, store); err != nil {
				return fmt.Errorf("failed to persist imported model: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported trained model from %s\n", args[0])
			return nil
		},
	}
}

func modelResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop the trained model and revert to rule-only scoring",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteTrainedModel(ctx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Trained model dropped; rule-based scoring only.")
			return nil
		},
	}
}

func modelStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a trained model is active",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			out := cmd.OutOrStdout()
			if svc.Trained() {
				fmt.Fprintln(out, "Scoring: hybrid (trained model + rules)")
			} else {
				fmt.Fprintln(out, "Scoring: rules only (no trained model)")
			}
			fmt.Fprintf(out, "Threshold: %d\n", svc.Threshold())
			return nil
		},
	}
}
