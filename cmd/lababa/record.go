package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lababa/lababa/internal/client/localcache"
	"github.com/lababa/lababa/internal/client/recordstore"
	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/stats"
)

func init() {
	var recordCmd = &cobra.Command{
		Use:   "record",
		Short: "Create, list and edit records",
	}

	// record add
	var addFlags draftFlags
	var addDate, addClock string
	var addMinutes int
	var addCmd = &cobra.Command{
		Use:   "add",
		Short: "Add a record (defaults to a 5 minute window ending now)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			client, err := openClient(ctx, true)
			if err != nil {
				return err
			}
			defer client.Close()

			d, err := addFlags.draft(cmd)
			if err != nil {
				return err
			}
			var rec record.Record
			if addDate != "" {
				rec, err = client.Records.AddRecordForDate(ctx, addDate, addClock, addMinutes, d)
			} else {
				rec, err = client.Records.Create(ctx, d)
			}
			return printResult(cmd.OutOrStdout(), rec, err)
		},
	}
	addFlags.bind(addCmd, true)
	addCmd.Flags().StringVar(&addFlags.userID, "user", "", "Owner user id (defaults to the logged-in user)")
	addCmd.Flags().StringVar(&addDate, "date", "", "Back-fill for a date (2006-01-02)")
	addCmd.Flags().StringVar(&addClock, "time", "", "Back-fill end time of day (15:04, default 12:00)")
	addCmd.Flags().IntVar(&addMinutes, "minutes", 5, "Back-fill duration in minutes")
	recordCmd.AddCommand(addCmd)

	// record list
	var listLimit int
	var listPeriod string
	var listJSON bool
	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "List records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openClient(context.Background(), true)
			if err != nil {
				return err
			}
			defer client.Close()

			items := stats.Page(stats.Apply(client.Records.Records(), periodFilter(listPeriod)), 0, listLimit)
			if listJSON {
				return printJSON(cmd.OutOrStdout(), items)
			}
			printRecords(cmd.OutOrStdout(), items)
			return nil
		},
	}
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 20, "Maximum records to show")
	listCmd.Flags().StringVarP(&listPeriod, "period", "p", "total", "Period: day|week|month|year|total")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON")
	recordCmd.AddCommand(listCmd)

	// record update <id>
	var updateFlags draftFlags
	var updateCmd = &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			client, err := openClient(ctx, true)
			if err != nil {
				return err
			}
			defer client.Close()

			p, err := updateFlags.patch(cmd)
			if err != nil {
				return err
			}
			rec, err := client.Records.Update(ctx, args[0], p)
			return printResult(cmd.OutOrStdout(), rec, err)
		},
	}
	updateFlags.bind(updateCmd, true)
	recordCmd.AddCommand(updateCmd)

	// record delete <id>
	var deleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			client, err := openClient(ctx, true)
			if err != nil {
				return err
			}
			defer client.Close()

			rec, err := client.Records.Delete(ctx, args[0])
			if err != nil && !errors.Is(err, localcache.ErrStorage) {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", rec.ID)
			return err
		},
	}
	recordCmd.AddCommand(deleteCmd)

	// record start
	var startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the recording timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			client, err := openClient(ctx, false)
			if err != nil {
				return err
			}
			defer client.Close()

			if current, ok := client.Records.CurrentRecording(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "restarting timer started at %s\n", formatMillis(current.StartTime))
			}
			rec := client.Records.StartRecording(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "timer started at %s\n", formatMillis(rec.StartTime))
			return nil
		},
	}
	recordCmd.AddCommand(startCmd)

	// record stop
	var stopFlags draftFlags
	var stopCancel bool
	var stopCmd = &cobra.Command{
		Use:   "stop",
		Short: "Stop the timer and save it as a record",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			client, err := openClient(ctx, true)
			if err != nil {
				return err
			}
			defer client.Close()

			if stopCancel {
				client.Records.CancelRecording(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), "timer cancelled")
				return nil
			}
			d, err := stopFlags.draft(cmd)
			if err != nil {
				return err
			}
			rec, err := client.Records.StopRecording(ctx, d)
			return printResult(cmd.OutOrStdout(), rec, err)
		},
	}
	stopFlags.bind(stopCmd, false)
	stopCmd.Flags().BoolVar(&stopCancel, "cancel", false, "Discard the running timer")
	recordCmd.AddCommand(stopCmd)

	// record status
	var statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the running timer and time since the last record",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openClient(context.Background(), true)
			if err != nil {
				return err
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			if current, ok := client.Records.CurrentRecording(); ok {
				fmt.Fprintf(out, "recording since %s (%ds)\n", formatMillis(current.StartTime), client.Records.Elapsed())
			} else {
				fmt.Fprintln(out, "no timer running")
			}
			if since, ok := client.Records.TimeSinceLastRecord(); ok {
				fmt.Fprintf(out, "last record %s ago\n", recordstore.FormatSince(since))
			}
			return nil
		},
	}
	recordCmd.AddCommand(statusCmd)

	rootCmd.AddCommand(recordCmd)
}
