package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lababa/lababa/internal/bootstrap"
	"github.com/lababa/lababa/internal/repository"
	"github.com/lababa/lababa/internal/stats"
	"github.com/lababa/lababa/internal/support/sysinfo"
)

func init() {
	var statCmd = &cobra.Command{
		Use:   "stat",
		Short: "Server-side statistics",
		Long:  `View host status and record totals straight from the server database.`,
	}

	// stat host
	var hostCmd = &cobra.Command{
		Use:   "host",
		Short: "Show CPU, memory, disk and load of this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sysinfo.New("").Collect()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "CPU:\t%.1f%%\n", s.CPU)
			fmt.Fprintf(w, "Memory:\t%s / %s\n", formatBytes(s.Mem.Used), formatBytes(s.Mem.Total))
			fmt.Fprintf(w, "Disk:\t%s / %s\n", formatBytes(s.Disk.Used), formatBytes(s.Disk.Total))
			fmt.Fprintf(w, "Load1:\t%.2f\n", s.Load1)
			fmt.Fprintf(w, "Uptime:\t%s\n", time.Duration(s.HostUptime)*time.Second)
			return w.Flush()
		},
	}
	statCmd.AddCommand(hostCmd)

	// stat records
	var recordsPeriod, recordsUser string
	var recordsCmd = &cobra.Command{
		Use:   "records",
		Short: "Show record totals from the server database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			db, err := bootstrap.OpenDatabase(ctx, cfg.DB, newLogger(true))
			if err != nil {
				return err
			}
			defer db.Close()

			p := stats.ParsePeriod(recordsPeriod)
			filter := repository.RecordFilter{UserID: recordsUser}
			if start, end, bounded := stats.Window(p, time.Now()); bounded {
				filter.Start, filter.End = &start, &end
			}
			totals, err := db.Store.Records().Totals(ctx, filter)
			if err != nil {
				return err
			}
			summary := stats.SummaryFromTotals(totals.Count, totals.Total, totals.Longest)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Records (%s, %s)\n", p, db.Driver)
			fmt.Fprintln(out, "========================")
			fmt.Fprintf(out, "  Count:    %d\n", summary.TotalRecords)
			fmt.Fprintf(out, "  Total:    %ds\n", summary.TotalDuration)
			fmt.Fprintf(out, "  Average:  %ds\n", summary.AverageDuration)
			fmt.Fprintf(out, "  Longest:  %ds\n", summary.LongestDuration)
			return nil
		},
	}
	recordsCmd.Flags().StringVarP(&recordsPeriod, "period", "p", "total", "Period: day|week|month|year|total")
	recordsCmd.Flags().StringVarP(&recordsUser, "user", "u", "", "Only count this user's records")
	statCmd.AddCommand(recordsCmd)

	rootCmd.AddCommand(statCmd)
}
