package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/rpggio/defectlog/internal/domain/record"
	"github.com/spf13/cobra"
)

func newAddCmd(opts *rootOptions) *cobra.Command {
	var keys bool

	cmd := &cobra.Command{
		Use:   "add QUALITY OCCURRENCE...",
		Short: "Log a defect observation",
		Long: `Log a defect observation stamped with the current time.

QUALITY is XX,X with a comma decimal (94,5) or a whole number (100).
With --keys, QUALITY is taken as typed digits and masked the way the entry
form does it: 945 becomes 94,5.`,
		Example: `  defectlog add 94,5 risco na lateral
  defectlog add 100 "sem defeitos"
  defectlog add --keys 975 bolha`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openWritableApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.records.Create(cmd.Context(), record.CreateRequest{
				Quality:    qualityArg(args[0], keys),
				Occurrence: strings.Join(args[1:], " "),
			})
			if err != nil {
				return explainPersist(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s  %s  %s\n", rec.Time, rec.Quality, rec.Occurrence)
			return nil
		},
	}

	cmd.Flags().BoolVar(&keys, "keys", false, "mask QUALITY as typed digits (945 -> 94,5)")
	return cmd
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	var (
		id    string
		index int
		keys  bool
	)

	cmd := &cobra.Command{
		Use:   "edit (--id ID | --index N) QUALITY OCCURRENCE...",
		Short: "Change quality and occurrence of a record",
		Long: `Change quality and occurrence of a record. The time stays as logged.

--index counts from 0 in the order shown by "defectlog list".
Pass - as QUALITY to keep the current value.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := record.UpdateRequest{
				ID:         id,
				Quality:    qualityArg(args[0], keys),
				Occurrence: strings.Join(args[1:], " "),
			}
			if cmd.Flags().Changed("index") {
				req.Index = &index
			}
			if req.ID == "" && req.Index == nil {
				return errors.New("pass --id or --index")
			}

			a, err := openWritableApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if args[0] == "-" {
				cur, err := currentRecord(a, req)
				if err != nil {
					return err
				}
				req.Quality = record.QualityInput(cur.Quality)
			}

			rec, err := a.records.Update(cmd.Context(), req)
			if err != nil {
				return explainPersist(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s  %s  %s\n", rec.Time, rec.Quality, rec.Occurrence)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "record ID")
	cmd.Flags().IntVar(&index, "index", 0, "position in the list, newest first")
	cmd.Flags().BoolVar(&keys, "keys", false, "mask QUALITY as typed digits (945 -> 94,5)")
	cmd.MarkFlagsMutuallyExclusive("id", "index")
	return cmd
}

func qualityArg(raw string, keys bool) string {
	if !keys || raw == "-" {
		return raw
	}
	masked, _ := record.MaskQuality(raw)
	return masked
}

func currentRecord(a *app, req record.UpdateRequest) (record.Record, error) {
	if req.ID != "" {
		rec, err := a.records.Get(req.ID)
		if err != nil {
			return record.Record{}, err
		}
		return *rec, nil
	}
	views := a.records.List()
	if *req.Index < 0 || *req.Index >= len(views) {
		return record.Record{}, record.ErrRecordNotFound
	}
	return views[*req.Index].Record, nil
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show current records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			views := a.records.List()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no records")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tTIME\tQUALITY\tOCCURRENCE\tID")
			for _, v := range views {
				quality := v.Quality
				if v.Low {
					quality += " LOW"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", v.Index, v.Time, quality, v.Occurrence, v.ID)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newClearCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every record without exporting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openWritableApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			n := a.records.Len()
			if !yes {
				return fmt.Errorf("refusing to delete %d records without --yes", n)
			}
			if err := a.records.Clear(cmd.Context()); err != nil {
				return explainPersist(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d records\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm")
	return cmd
}

// explainPersist adds context for write failures; a one-shot command exits
// right after, so an unsaved change is lost.
func explainPersist(cmd *cobra.Command, err error) error {
	if errors.Is(err, record.ErrPersist) {
		warnf(cmd, "the change was not written to disk")
	}
	return err
}
