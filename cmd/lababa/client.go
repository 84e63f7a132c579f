package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lababa/lababa/internal/bootstrap"
	"github.com/lababa/lababa/internal/client/localcache"
	"github.com/lababa/lababa/internal/client/transport"
	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/stats"
)

var offline bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Do not contact the server; use the local cache only")
}

// openClient 组装客户端并从远端（失败时从缓存）加载记录集合。
func openClient(ctx context.Context, load bool) (*bootstrap.Client, error) {
	logger := newLogger(true)
	var opts []bootstrap.ClientOption
	if offline {
		opts = append(opts, bootstrap.Offline())
	}
	opts = append(opts, bootstrap.WithTransportListener(func(ev transport.Event) {
		if ev.Kind == transport.EventLoginPrompt || ev.Kind == transport.EventAuthRequired {
			fmt.Fprintln(os.Stderr, "not logged in; run `lababa login --code <code>` / 请先登录")
		}
	}))
	client, err := bootstrap.BuildClient(ctx, cfg, logger, opts...)
	if err != nil {
		return nil, err
	}
	if load {
		client.Records.Load(ctx)
	}
	return client, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult 输出写操作的结果；本地缓存写入失败时记录照常输出，错误仍返回给调用方。
func printResult(w io.Writer, rec record.Record, err error) error {
	if err != nil && !errors.Is(err, localcache.ErrStorage) {
		return err
	}
	if perr := printJSON(w, rec); perr != nil {
		return perr
	}
	return err
}

func printRecords(w io.Writer, records []record.Record) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEND\tDURATION\tCOLOR\tSTATUS\tSHAPE\tAMOUNT\tNOTE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%ds\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			time.UnixMilli(r.EndTime).Format("2006-01-02 15:04"),
			r.Duration, r.Color, r.Status, r.Shape, r.Amount, r.Note)
	}
	_ = tw.Flush()
}

// draftFlags 记录字段的命令行参数，add/stop/update 共用。
type draftFlags struct {
	userID      string
	start       string
	end         string
	duration    int64
	color       string
	status      string
	shape       string
	amount      string
	note        string
	notComplete bool
}

func (f *draftFlags) bind(cmd *cobra.Command, withTimes bool) {
	if withTimes {
		cmd.Flags().StringVar(&f.start, "start", "", "Start time (RFC3339 or 2006-01-02 15:04)")
		cmd.Flags().StringVar(&f.end, "end", "", "End time (RFC3339 or 2006-01-02 15:04)")
		cmd.Flags().Int64Var(&f.duration, "duration", 0, "Duration in seconds")
	}
	cmd.Flags().StringVar(&f.color, "color", "", "Color: brown|dark_brown|yellow|green|black|red")
	cmd.Flags().StringVar(&f.status, "status", "", "Status: normal|diarrhea|constipation")
	cmd.Flags().StringVar(&f.shape, "shape", "", "Shape: banana|sausage|lumpy|pellet|mushy|watery")
	cmd.Flags().StringVar(&f.amount, "amount", "", "Amount: small|moderate|large")
	cmd.Flags().StringVar(&f.note, "note", "", "Free-form note")
	cmd.Flags().BoolVar(&f.notComplete, "incomplete", false, "Mark the record as not completed")
}

func (f *draftFlags) draft(cmd *cobra.Command) (record.Draft, error) {
	d := record.Draft{
		UserID: f.userID,
		Color:  f.color,
		Status: f.status,
		Shape:  f.shape,
		Amount: f.amount,
		Note:   f.note,
	}
	var err error
	if d.StartTime, err = parseTimeFlag(f.start); err != nil {
		return d, err
	}
	if d.EndTime, err = parseTimeFlag(f.end); err != nil {
		return d, err
	}
	if cmd.Flags().Changed("duration") {
		d.Duration = &f.duration
	}
	if cmd.Flags().Changed("incomplete") {
		completed := !f.notComplete
		d.IsCompleted = &completed
	}
	return d, nil
}

func (f *draftFlags) patch(cmd *cobra.Command) (record.Patch, error) {
	var p record.Patch
	str := func(name string, v string) *string {
		if cmd.Flags().Changed(name) {
			return &v
		}
		return nil
	}
	p.Color = str("color", f.color)
	p.Status = str("status", f.status)
	p.Shape = str("shape", f.shape)
	p.Amount = str("amount", f.amount)
	p.Note = str("note", f.note)
	var err error
	if p.StartTime, err = parseTimeFlag(f.start); err != nil {
		return p, err
	}
	if p.EndTime, err = parseTimeFlag(f.end); err != nil {
		return p, err
	}
	if cmd.Flags().Changed("duration") {
		p.Duration = &f.duration
	}
	if cmd.Flags().Changed("incomplete") {
		completed := !f.notComplete
		p.IsCompleted = &completed
	}
	if p.Empty() {
		return p, fmt.Errorf("nothing to update / 没有需要更新的字段")
	}
	return p, nil
}

// parseTimeFlag 接受 RFC3339、本地 "2006-01-02 15:04" 或毫秒时间戳。
func parseTimeFlag(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		ms := t.UnixMilli()
		return &ms, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", raw, time.Local); err == nil {
		ms := t.UnixMilli()
		return &ms, nil
	}
	var ms int64
	if _, err := fmt.Sscan(raw, &ms); err == nil && ms > 0 {
		return &ms, nil
	}
	return nil, fmt.Errorf("invalid time %q / 时间格式无效", raw)
}

func periodFilter(period string) stats.Filter {
	start, end, bounded := stats.Window(stats.ParsePeriod(period), time.Now())
	if !bounded {
		return stats.Filter{}
	}
	return stats.Filter{Start: &start, End: &end}
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02 15:04:05")
}
