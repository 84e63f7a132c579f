package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lababa/lababa/internal/client/datamanager"
	"github.com/lababa/lababa/internal/client/localcache"
)

func init() {
	// backup
	var backupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Export, import and sync local snapshots",
	}

	var exportFormat, exportOut string
	var exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write the local snapshot to a file (json, yaml or xlsx)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			client, err := openClient(ctx, true)
			if err != nil {
				return err
			}
			defer client.Close()

			format := strings.ToLower(strings.TrimSpace(exportFormat))
			path := exportOut
			if path == "" {
				path = client.Data.ExportFileName(format)
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			defer f.Close()

			switch format {
			case "json":
				data, err := client.Data.Export(ctx)
				if err != nil {
					return err
				}
				if _, err := f.Write(data); err != nil {
					return err
				}
			case "yaml", "yml":
				if err := client.Data.ExportYAML(ctx, f); err != nil {
					return err
				}
			case "xlsx":
				if err := client.Data.ExportXLSX(f, time.Local); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q / 不支持的格式", exportFormat)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", path)
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Format: json|yaml|xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Output file (default poop-records-<date>.<ext>)")
	backupCmd.AddCommand(exportCmd)

	var importCmd = &cobra.Command{
		Use:   "import <file>",
		Short: "Restore a JSON snapshot into the local cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			data, err := os.ReadFile(filepath.Clean(args[0]))
			if err != nil {
				return err
			}
			if v := datamanager.Validate(data); !v.IsValid {
				return fmt.Errorf("invalid snapshot / 备份数据无效: %s", strings.Join(v.Errors, "; "))
			}
			client, err := openClient(ctx, false)
			if err != nil {
				return err
			}
			defer client.Close()

			if !client.Data.Import(ctx, data) {
				return datamanager.ErrImportFailed
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", len(client.Records.Records()))
			return nil
		},
	}
	backupCmd.AddCommand(importCmd)

	var pushCmd = &cobra.Command{
		Use:   "push",
		Short: "Upload the local snapshot to object storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			client, err := openClient(ctx, true)
			if err != nil {
				return err
			}
			defer client.Close()

			key, err := client.Data.Push(ctx, snapshotOwner(ctx, client.Cache))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pushed %s\n", key)
			return nil
		},
	}
	backupCmd.AddCommand(pushCmd)

	var pullCmd = &cobra.Command{
		Use:   "pull [key]",
		Short: "Download a snapshot (latest by default) and import it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			client, err := openClient(ctx, false)
			if err != nil {
				return err
			}
			defer client.Close()

			var key string
			if len(args) == 1 {
				key = args[0]
			}
			key, err = client.Data.Pull(ctx, snapshotOwner(ctx, client.Cache), key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s (%d records)\n", key, len(client.Records.Records()))
			return nil
		},
	}
	backupCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(backupCmd)

	// data
	var dataCmd = &cobra.Command{
		Use:   "data",
		Short: "Inspect and maintain the local cache",
	}

	var dataStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Record count, storage usage and time range",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			client, err := openClient(ctx, false)
			if err != nil {
				return err
			}
			defer client.Close()

			s := client.Data.Stats(ctx)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Records:  %d\n", s.RecordCount)
			fmt.Fprintf(out, "Storage:  %s\n", formatBytes(uint64(max(s.StorageUsed, 0))))
			fmt.Fprintf(out, "Keys:     %s\n", strings.Join(s.Keys, ", "))
			if s.OldestRecord != nil {
				fmt.Fprintf(out, "Oldest:   %s\n", formatMillis(*s.OldestRecord))
			}
			if s.NewestRecord != nil {
				fmt.Fprintf(out, "Newest:   %s\n", formatMillis(*s.NewestRecord))
			}
			return nil
		},
	}
	dataCmd.AddCommand(dataStatsCmd)

	var validateCmd = &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a snapshot file, or the current export when no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			var data []byte
			if len(args) == 1 {
				raw, err := os.ReadFile(filepath.Clean(args[0]))
				if err != nil {
					return err
				}
				data = raw
			} else {
				client, err := openClient(ctx, false)
				if err != nil {
					return err
				}
				defer client.Close()
				if data, err = client.Data.Export(ctx); err != nil {
					return err
				}
			}
			v := datamanager.Validate(data)
			if err := printJSON(cmd.OutOrStdout(), v); err != nil {
				return err
			}
			if !v.IsValid {
				return fmt.Errorf("%d problems found / 发现 %d 个问题", len(v.Errors), len(v.Errors))
			}
			return nil
		},
	}
	dataCmd.AddCommand(validateCmd)

	var clearYes bool
	var clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Remove every locally cached value",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !clearYes {
				return fmt.Errorf("refusing to clear without --yes / 请加 --yes 确认清除")
			}
			ctx := context.Background()
			client, err := openClient(ctx, false)
			if err != nil {
				return err
			}
			defer client.Close()

			if !client.Data.ClearAll(ctx) {
				return fmt.Errorf("clear failed / 清除数据失败")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "local data cleared")
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm clearing")
	dataCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(dataCmd)
}

// snapshotOwner 快照按已登录用户分目录，未登录时为空。
func snapshotOwner(ctx context.Context, cache *localcache.Manager) string {
	user, _ := cache.UserInfo(ctx)
	return user.ID
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
