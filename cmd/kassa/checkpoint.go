package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Veraticus/kassa/internal/cli"
	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/storage"
	"github.com/spf13/cobra"
)

func checkpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage database checkpoints",
		Long: `Create, list, restore, and delete database checkpoints.

Checkpoints are full copies of the cash book. Take one before a risky change
and restore it if something goes wrong. Imports take one automatically.`,
		Example: `  kassa checkpoint create --tag before-cleanup
  kassa checkpoint list
  kassa checkpoint restore before-cleanup
  kassa checkpoint delete before-cleanup`,
	}

	cmd.AddCommand(createCheckpointCmd())
	cmd.AddCommand(listCheckpointsCmd())
	cmd.AddCommand(restoreCheckpointCmd())
	cmd.AddCommand(deleteCheckpointCmd())

	return cmd
}

// withCheckpoints opens storage and its checkpoint manager.
func withCheckpoints(ctx context.Context, fn func(*storage.CheckpointManager) error) error {
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	manager, err := store.NewCheckpointManager()
	if err != nil {
		return fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	return fn(manager)
}

func checkpointError(id string, err error) error {
	switch {
	case errors.Is(err, storage.ErrCheckpointNotFound):
		return common.NewUserError(fmt.Sprintf("checkpoint %q not found", id), err)
	case errors.Is(err, storage.ErrCheckpointExists):
		return common.NewUserError(fmt.Sprintf("checkpoint %q already exists", id), err)
	case errors.Is(err, storage.ErrInvalidCheckpointID):
		return common.NewUserError(fmt.Sprintf("invalid checkpoint name %q", id), err)
	default:
		return err
	}
}

func createCheckpointCmd() *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new checkpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireEditor(); err != nil {
				return err
			}
			return withCheckpoints(cmd.Context(), func(manager *storage.CheckpointManager) error {
				info, err := manager.Create(cmd.Context(), tag, description)
				if err != nil {
					return checkpointError(tag, err)
				}
				fmt.Fprintf(out(cmd), "%s Created checkpoint %s (%s)\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(info.ID),
					formatFileSize(info.FileSize))
				if info.Description != "" {
					fmt.Fprintf(out(cmd), "  Description: %s\n", info.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Checkpoint name (generated when empty)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description of the checkpoint")

	return cmd
}

func listCheckpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all checkpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCheckpoints(cmd.Context(), func(manager *storage.CheckpointManager) error {
				checkpoints, err := manager.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list checkpoints: %w", err)
				}
				if len(checkpoints) == 0 {
					fmt.Fprintln(out(cmd), cli.SubtleStyle.Render("No checkpoints found."))
					return nil
				}

				rows := make([][]string, 0, len(checkpoints))
				for _, cp := range checkpoints {
					kind := "manual"
					if cp.IsAuto {
						kind = "auto"
					}
					rows = append(rows, []string{
						cp.ID,
						formatRelativeTime(cp.CreatedAt),
						formatFileSize(cp.FileSize),
						strconv.Itoa(cp.Operations),
						strconv.Itoa(cp.Debts),
						strconv.Itoa(cp.Goals),
						kind,
					})
				}
				fmt.Fprintln(out(cmd), cli.Table(
					[]string{"Name", "Created", "Size", "Operations", "Debts", "Goals", "Type"}, rows))
				return nil
			})
		},
	}
}

func restoreCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <checkpoint-id>",
		Short: "Replace the database with a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEditor(); err != nil {
				return err
			}
			id := args[0]

			return withCheckpoints(cmd.Context(), func(manager *storage.CheckpointManager) error {
				info, err := manager.Get(cmd.Context(), id)
				if err != nil {
					return checkpointError(id, err)
				}

				if !force {
					fmt.Fprintf(out(cmd), "%s This will replace the current database with checkpoint %s.\n",
						cli.WarningStyle.Render(cli.WarningIcon), cli.InfoStyle.Render(id))
					fmt.Fprintf(out(cmd), "  Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
					if info.Description != "" {
						fmt.Fprintf(out(cmd), "  Description: %s\n", info.Description)
					}
					ok, err := cli.Confirm(cmd.Context(), cli.NewLineReader(cmd.InOrStdin()), out(cmd), "Continue?")
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out(cmd), cli.SubtleStyle.Render("Restore cancelled."))
						return nil
					}
				}

				if err := manager.Restore(cmd.Context(), id); err != nil {
					return checkpointError(id, err)
				}
				fmt.Fprintf(out(cmd), "%s Restored from checkpoint %s\n",
					cli.SuccessStyle.Render(cli.SuccessIcon), cli.InfoStyle.Render(id))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

func deleteCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <checkpoint-id>",
		Short: "Delete a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEditor(); err != nil {
				return err
			}
			id := args[0]

			return withCheckpoints(cmd.Context(), func(manager *storage.CheckpointManager) error {
				info, err := manager.Get(cmd.Context(), id)
				if err != nil {
					return checkpointError(id, err)
				}

				if !force {
					fmt.Fprintf(out(cmd), "%s This will permanently delete checkpoint %s (%s).\n",
						cli.WarningStyle.Render(cli.WarningIcon), cli.InfoStyle.Render(id), formatFileSize(info.FileSize))
					ok, err := cli.Confirm(cmd.Context(), cli.NewLineReader(cmd.InOrStdin()), out(cmd), "Continue?")
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out(cmd), cli.SubtleStyle.Render("Deletion cancelled."))
						return nil
					}
				}

				if err := manager.Delete(cmd.Context(), id); err != nil {
					return checkpointError(id, err)
				}
				fmt.Fprintf(out(cmd), "%s Deleted checkpoint %s\n",
					cli.SuccessStyle.Render(cli.SuccessIcon), cli.InfoStyle.Render(id))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}
