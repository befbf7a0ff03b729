package main

import (
	"fmt"
	"time"

	"github.com/rpggio/defectlog/internal/export"
	"github.com/rpggio/defectlog/internal/scheduler"
	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var trigger string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the CSV and text reports now",
		Long: `Write the CSV and text reports for the current records.

Without --trigger the files are tagged with the current time and the records
are kept. With --trigger HH:MM the export runs as the scheduled export for that
time would: files are tagged with the trigger and the exported records are
removed afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := export.Manual()
			if trigger != "" {
				t, err := scheduler.ParseTrigger(trigger)
				if err != nil {
					return err
				}
				req = export.Scheduled(t.Label)
			}

			a, err := openWritableApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.exports.Export(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Skipped {
				fmt.Fprintln(out, "no records to export")
				return nil
			}
			fmt.Fprintf(out, "exported %d records (%d low quality)\n", res.Records, res.LowQuality)
			fmt.Fprintln(out, res.CSVPath)
			fmt.Fprintln(out, res.TextPath)
			if res.Kind == export.KindScheduled {
				fmt.Fprintf(out, "removed %d records\n", res.Rotated)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&trigger, "trigger", "", "run as the scheduled export for HH:MM")
	return cmd
}

func newNextCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Show the next scheduled export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			triggers, err := scheduler.ParseTriggers(cfg.Schedule.Triggers)
			if err != nil {
				return err
			}
			next := scheduler.NextOccurrence(triggers, time.Now())
			fmt.Fprintf(cmd.OutOrStdout(), "Next export: %s\n", next.Format("02/01/2006 15:04"))
			return nil
		},
	}
}
