package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect render jobs",
	}
	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsResultCommand(ctx))
	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List render jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := ctx.client().ListJobs(cmd.Context())
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs.")
				return nil
			}

			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				rows = append(rows, []string{
					job.ID,
					job.Status,
					fmt.Sprintf("%.0f%%", job.Progress),
					job.Message,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Status", "Progress", "Message"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show a job's detail including its overlays",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := ctx.client().JobDetail(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(detail)
			}

			fmt.Fprintf(out, "Job      %s\n", detail.ID)
			fmt.Fprintf(out, "Status   %s\n", detail.Status)
			fmt.Fprintf(out, "Progress %.1f%%\n", detail.Progress)
			if detail.Message != "" {
				fmt.Fprintf(out, "Message  %s\n", detail.Message)
			}
			fmt.Fprintf(out, "Input    %s\n", detail.InputPath)
			if detail.OutputPath != "" {
				fmt.Fprintf(out, "Output   %s\n", detail.OutputPath)
			}
			fmt.Fprintf(out, "Overlays %d\n", len(detail.Overlays))
			for i, o := range detail.Overlays {
				fmt.Fprintf(out, "  %d. %s %q at (%.2f, %.2f) from %.1fs to %.1fs\n",
					i+1, o.Kind, o.Content, o.X, o.Y, o.StartTime, o.EndTime)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw JSON detail")
	return cmd
}

func newJobsResultCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "result <job-id>",
		Short: "Download a finished job's rendered video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := strings.TrimSpace(outputPath)
			if dest == "" {
				dest = args[0] + "_output.mp4"
			}
			if err := ctx.client().DownloadResult(cmd.Context(), args[0], dest); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved result to %s\n", dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file for the rendered video")
	return cmd
}

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var overlaysArg string

	cmd := &cobra.Command{
		Use:   "submit <video>",
		Short: "Submit a video for overlay rendering",
		Long: "Submit a video for overlay rendering. Overlays are given as a JSON array,\n" +
			"either inline or as a path to a JSON file (prefix with @).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overlaysJSON, err := resolveOverlaysArg(overlaysArg)
			if err != nil {
				return err
			}
			job, err := ctx.client().SubmitJob(cmd.Context(), args[0], overlaysJSON)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Accepted job %s (%s)\n", job.ID, job.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&overlaysArg, "overlays", "[]", "Overlay JSON array, or @path to a JSON file")
	return cmd
}

func resolveOverlaysArg(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "[]", nil
	}
	if strings.HasPrefix(arg, "@") {
		data, err := os.ReadFile(strings.TrimPrefix(arg, "@"))
		if err != nil {
			return "", fmt.Errorf("read overlays file: %w", err)
		}
		return string(data), nil
	}
	return arg, nil
}
