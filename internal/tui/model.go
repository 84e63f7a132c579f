package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lababa/lababa/internal/client/localcache"
	"github.com/lababa/lababa/internal/client/recordstore"
	"github.com/lababa/lababa/internal/record"
	"github.com/lababa/lababa/internal/stats"
)

// ViewType 表示当前视图
type ViewType int

const (
	ViewRecordList   ViewType = iota // 记录列表
	ViewRecordDetail                 // 单条记录详情
)

// RecordSource 面板依赖的记录存储能力，*recordstore.Store 即满足。
type RecordSource interface {
	Records() []record.Record
	Load(ctx context.Context) []record.Record
	Summary(f stats.Filter) stats.Summary
	StartRecording(ctx context.Context) recordstore.Recording
	StopRecording(ctx context.Context, d record.Draft) (record.Record, error)
	CancelRecording(ctx context.Context)
	CurrentRecording() (recordstore.Recording, bool)
	Elapsed() int64
	Delete(ctx context.Context, id string) (record.Record, error)
	TimeSinceLastRecord() (time.Duration, bool)
}

var _ RecordSource = (*recordstore.Store)(nil)

// Model 是主 TUI 模型
type Model struct {
	// 数据
	records  []record.Record
	selected int
	summary  stats.Summary
	today    stats.Summary

	// 视图状态
	view   ViewType
	detail *record.Record

	// 计时
	recording bool
	elapsed   int64

	store RecordSource
	clock stats.Clock

	// 终端尺寸
	width  int
	height int

	// 状态
	loading bool
	notice  string
	err     error

	// 按键绑定
	keys keyMap
}

// keyMap 定义全部按键绑定
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Back    key.Binding
	Quit    key.Binding
	Refresh key.Binding
	Timer   key.Binding
	Cancel  key.Binding
	Delete  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Timer: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start/stop"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cancel timer"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

// NewModel 创建新的 TUI 模型；clock 为 nil 时使用系统时间。
func NewModel(store RecordSource, clock stats.Clock) Model {
	if clock == nil {
		clock = stats.SystemClock
	}
	_, recording := store.CurrentRecording()
	return Model{
		store:     store,
		clock:     clock,
		view:      ViewRecordList,
		keys:      defaultKeyMap(),
		loading:   true,
		recording: recording,
		elapsed:   store.Elapsed(),
	}
}

// Init 实现 tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadRecords(),
		tickCmd(),
	)
}

// 消息类型

type recordsLoadedMsg struct {
	records []record.Record
}

// warn 非空表示操作已在内存生效但本地缓存写入失败。
type recordSavedMsg struct {
	record record.Record
	warn   error
}

type recordDeletedMsg struct {
	record record.Record
	warn   error
}

type errorMsg struct {
	err error
}

type tickMsg time.Time

// 命令

func (m Model) loadRecords() tea.Cmd {
	return func() tea.Msg {
		return recordsLoadedMsg{records: m.store.Load(context.Background())}
	}
}

func (m Model) stopRecording() tea.Cmd {
	return func() tea.Msg {
		rec, err := m.store.StopRecording(context.Background(), record.Draft{})
		if err != nil && !errors.Is(err, localcache.ErrStorage) {
			return errorMsg{err: err}
		}
		return recordSavedMsg{record: rec, warn: err}
	}
}

func (m Model) deleteRecord(id string) tea.Cmd {
	return func() tea.Msg {
		rec, err := m.store.Delete(context.Background(), id)
		if err != nil && !errors.Is(err, localcache.ErrStorage) {
			return errorMsg{err: err}
		}
		return recordDeletedMsg{record: rec, warn: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshDerived 从存储重新读取集合并计算汇总，today 为本地自然日。
func (m *Model) refreshDerived() {
	m.records = m.store.Records()
	m.summary = m.store.Summary(stats.Filter{})
	start, end, _ := stats.Window(stats.PeriodDay, m.clock())
	m.today = m.store.Summary(stats.Filter{Start: &start, End: &end})
	if m.selected >= len(m.records) {
		m.selected = max(len(m.records)-1, 0)
	}
}
