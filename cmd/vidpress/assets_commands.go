package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newAssetsCommand(ctx *commandContext) *cobra.Command {
	assetsCmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage overlay assets",
	}
	assetsCmd.AddCommand(newAssetsListCommand(ctx))
	assetsCmd.AddCommand(newAssetsAddCommand(ctx))
	return assetsCmd
}

func newAssetsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List uploaded overlay assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, err := ctx.client().ListAssets(cmd.Context())
			if err != nil {
				return err
			}
			if len(stored) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No assets.")
				return nil
			}

			rows := make([][]string, 0, len(stored))
			for _, asset := range stored {
				rows = append(rows, []string{
					asset.Filename,
					asset.Kind,
					asset.OriginalName,
					asset.CreatedAt.Local().Format(time.RFC3339),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Filename", "Type", "Original Name", "Uploaded"},
				rows,
				nil,
			))
			return nil
		},
	}
}

func newAssetsAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>",
		Short: "Upload an overlay asset (image or video)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset, err := ctx.client().UploadAsset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s as %s (%s)\n", asset.OriginalName, asset.Filename, asset.Kind)
			fmt.Fprintln(cmd.OutOrStdout(), "Reference it from an overlay's content field.")
			return nil
		},
	}
}
