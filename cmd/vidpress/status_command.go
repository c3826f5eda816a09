package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon health and job counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := ctx.client().Health(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon   %s (%s)\n", report.Status, ctx.serverURL())
			rows := [][]string{
				{"total", fmt.Sprintf("%d", report.Jobs["total"])},
				{"pending", fmt.Sprintf("%d", report.Jobs["pending"])},
				{"processing", fmt.Sprintf("%d", report.Jobs["processing"])},
				{"done", fmt.Sprintf("%d", report.Jobs["done"])},
				{"error", fmt.Sprintf("%d", report.Jobs["error"])},
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Jobs", "Count"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}
