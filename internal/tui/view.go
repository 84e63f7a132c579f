package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/lababa/lababa/internal/client/recordstore"
	"github.com/lababa/lababa/internal/record"
)

// View 实现 tea.Model
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.view {
	case ViewRecordDetail:
		return m.renderDetailView()
	default:
		return m.renderListView()
	}
}

func (m Model) renderListView() string {
	var b strings.Builder

	// 头部
	b.WriteString(styleHeader.Width(m.width).Render("  Lababa 记录面板"))
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styleError.Render(fmt.Sprintf("  Error: %v", m.err)))
		b.WriteString("\n\n")
	} else if m.notice != "" {
		b.WriteString(styleNotice.Render("  " + m.notice))
		b.WriteString("\n\n")
	}

	if m.loading {
		b.WriteString(styleMuted().Render("  Loading..."))
		b.WriteString("\n\n")
	}

	// 表头
	tableHeader := fmt.Sprintf("  %-16s │ %-8s │ %-12s │ %-14s │ %s", "结束时间", "时长", "颜色", "状态", "备注")
	b.WriteString(styleTableHeader.Width(m.width).Render(tableHeader))
	b.WriteString("\n")
	b.WriteString(styleMuted().Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	if len(m.records) == 0 {
		b.WriteString(styleMuted().Render("  还没有记录，按 s 开始计时。"))
		b.WriteString("\n")
	} else {
		// 按终端高度计算可见行数
		visibleRows := max(m.height-14, 5)
		startIdx := 0
		if m.selected >= visibleRows {
			startIdx = m.selected - visibleRows + 1
		}
		endIdx := min(startIdx+visibleRows, len(m.records))

		for i := startIdx; i < endIdx; i++ {
			b.WriteString(m.renderRow(m.records[i], i == m.selected))
			b.WriteString("\n")
		}
		if len(m.records) > visibleRows {
			b.WriteString(styleMuted().Render(fmt.Sprintf("  Showing %d-%d of %d records", startIdx+1, endIdx, len(m.records))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderSummary())
	b.WriteString("\n\n")
	b.WriteString(styleHelp.Render("  [↑/↓] Navigate  [Enter] Details  [s] Start/Stop  [x] Cancel  [d] Delete  [r] Refresh  [q] Quit"))

	return b.String()
}

func (m Model) renderStatusLine() string {
	if m.recording {
		return styleTimer.Render("  ⏱  计时中 " + formatClock(m.elapsed))
	}
	if since, ok := m.store.TimeSinceLastRecord(); ok {
		return styleMuted().Render("  距上次记录 " + recordstore.FormatSince(since))
	}
	return styleMuted().Render("  暂无记录")
}

func (m Model) renderRow(rec record.Record, selected bool) string {
	note := truncate(rec.Note, 24)
	row := fmt.Sprintf("  %-16s │ %-8s │ %-12s │ %-14s │ %s",
		formatTime(rec.EndTime, m.clock().Location()),
		formatDuration(rec.Duration),
		ColorSwatch(rec.Color),
		StatusIcon(rec.Status),
		note,
	)
	if selected {
		return styleTableRowSelected.Width(m.width).Render(row)
	}
	return styleTableRow.Render(row)
}

func (m Model) renderSummary() string {
	parts := []string{
		fmt.Sprintf("今日 %d 次", m.today.TotalRecords),
		fmt.Sprintf("累计 %d 次", m.summary.TotalRecords),
		"平均 " + formatDuration(m.summary.AverageDuration),
		"最长 " + formatDuration(m.summary.LongestDuration),
	}
	return styleMuted().Render("  " + strings.Join(parts, "  │  "))
}

func (m Model) renderDetailView() string {
	var b strings.Builder
	b.WriteString(styleHeader.Width(m.width).Render("  记录详情"))
	b.WriteString("\n\n")

	if m.detail == nil {
		b.WriteString(styleMuted().Render("  No record selected."))
		return b.String()
	}
	rec := m.detail
	loc := m.clock().Location()
	completed := "是"
	if !rec.IsCompleted {
		completed = "否"
	}

	lines := []string{
		field("ID", rec.ID),
		field("用户", rec.UserID),
		field("开始", formatTime(rec.StartTime, loc)),
		field("结束", formatTime(rec.EndTime, loc)),
		field("时长", formatDuration(rec.Duration)),
		field("颜色", ColorSwatch(rec.Color)),
		field("状态", StatusIcon(rec.Status)),
		field("形状", string(rec.Shape)),
		field("分量", string(rec.Amount)),
		field("完成", completed),
		field("备注", rec.Note),
	}
	b.WriteString(styleDetailBox.Render(strings.Join(lines, "\n")))
	b.WriteString("\n\n")
	b.WriteString(styleHelp.Render("  [Esc] Back  [d] Delete  [q] Quit"))
	return b.String()
}

func field(label, value string) string {
	return styleLabel.Render(label) + styleValue.Render(value)
}

// current 列表视图下为选中行，详情视图下为详情记录。
func (m Model) current() *record.Record {
	if m.view == ViewRecordDetail {
		return m.detail
	}
	if m.selected < 0 || m.selected >= len(m.records) {
		return nil
	}
	return &m.records[m.selected]
}

func formatTime(ms int64, loc *time.Location) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).In(loc).Format("2006-01-02 15:04")
}

// formatDuration 秒数转 "1m30s" 风格。
func formatDuration(seconds int64) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
}

func formatClock(seconds int64) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
