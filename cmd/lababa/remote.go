package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lababa/lababa/internal/stats"
)

func init() {
	// login
	var loginCode, loginNick, loginAvatar string
	var loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Log in with a mini-program code and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			client, err := openClient(ctx, false)
			if err != nil {
				return err
			}
			defer client.Close()

			session, err := client.Remote.Login(ctx, loginCode, loginNick, loginAvatar)
			if err != nil {
				return err
			}
			client.Cache.SaveUserInfo(ctx, session.User)
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s), token expires %s\n",
				session.User.ID, session.User.NickName, formatMillis(session.ExpiresAt))
			return nil
		},
	}
	loginCmd.Flags().StringVar(&loginCode, "code", "", "Login code")
	loginCmd.Flags().StringVar(&loginNick, "nick", "", "Nickname")
	loginCmd.Flags().StringVar(&loginAvatar, "avatar", "", "Avatar URL")
	_ = loginCmd.MarkFlagRequired("code")
	rootCmd.AddCommand(loginCmd)

	// logout
	var logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Forget the local session token and user info",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			client, err := openClient(ctx, false)
			if err != nil {
				return err
			}
			defer client.Close()

			if !offline && client.Cache.Token() != "" {
				if err := client.Remote.Logout(ctx); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "server logout failed: %v\n", err)
				}
			}
			client.Cache.SetToken("")
			client.Records.Reset()
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
	rootCmd.AddCommand(logoutCmd)

	// sync
	var syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Reload records from the server into the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			client, err := openClient(ctx, false)
			if err != nil {
				return err
			}
			defer client.Close()

			items := client.Records.Load(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "%d records, last at %s\n", len(items), formatMillis(client.Records.LastRecordTime()))
			return nil
		},
	}
	rootCmd.AddCommand(syncCmd)

	// stats
	var statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Summaries over the local record collection",
	}

	var summaryPeriod string
	var summaryCmd = &cobra.Command{
		Use:   "summary",
		Short: "Count, total, average and longest duration",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openClient(context.Background(), true)
			if err != nil {
				return err
			}
			defer client.Close()
			return printJSON(cmd.OutOrStdout(), client.Records.Summary(periodFilter(summaryPeriod)))
		},
	}
	summaryCmd.Flags().StringVarP(&summaryPeriod, "period", "p", "total", "Period: day|week|month|year|total")
	statsCmd.AddCommand(summaryCmd)

	var monthYear, monthMonth int
	var monthCmd = &cobra.Command{
		Use:   "month",
		Short: "Per-day counts for a calendar month",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openClient(context.Background(), true)
			if err != nil {
				return err
			}
			defer client.Close()

			now := time.Now()
			if monthYear == 0 {
				monthYear = now.Year()
			}
			if monthMonth == 0 {
				monthMonth = int(now.Month())
			}
			report := stats.MonthDays(client.Records.Records(), monthYear, monthMonth, now.Location())
			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tNORMAL\tDIARRHEA\tCONSTIPATION\tTOTAL")
			for _, d := range report.Days {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", d.Date, d.Normal, d.Diarrhea, d.Constipation, d.Total)
			}
			_ = tw.Flush()
			fmt.Fprintf(out, "%d-%02d: %d days, %d records\n", report.Year, report.Month, report.TotalDays, report.TotalRecords)
			return nil
		},
	}
	monthCmd.Flags().IntVar(&monthYear, "year", 0, "Year (default current)")
	monthCmd.Flags().IntVar(&monthMonth, "month", 0, "Month 1-12 (default current)")
	statsCmd.AddCommand(monthCmd)

	var overviewPeriod string
	var overviewCmd = &cobra.Command{
		Use:   "overview",
		Short: "Check-in days, color distribution and health score",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openClient(context.Background(), true)
			if err != nil {
				return err
			}
			defer client.Close()

			ov, err := stats.PersonalOverview(client.Records.Records(), stats.Period(overviewPeriod), time.Now())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ov)
		},
	}
	overviewCmd.Flags().StringVarP(&overviewPeriod, "period", "p", "week", "Period: day|week|month|year")
	statsCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(statsCmd)

	// ranking
	var rankingPeriod string
	var rankingCmd = &cobra.Command{
		Use:   "ranking",
		Short: "Show the server-side ranking for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			client, err := openClient(ctx, false)
			if err != nil {
				return err
			}
			defer client.Close()

			entries, err := client.Remote.Ranking(ctx, stats.ParsePeriod(rankingPeriod))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tUSER\tCOUNT\tDURATION")
			for i, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%ds\n", i+1, e.ID, e.TotalCount, e.TotalDuration)
			}
			return tw.Flush()
		},
	}
	rankingCmd.Flags().StringVarP(&rankingPeriod, "period", "p", "week", "Period: day|week|month|year|total")
	rootCmd.AddCommand(rankingCmd)
}
