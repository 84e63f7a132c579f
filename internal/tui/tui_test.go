package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lababa/lababa/internal/client/localcache"
	"github.com/lababa/lababa/internal/client/recordstore"
	"github.com/lababa/lababa/internal/record"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newModel(t *testing.T) (Model, *recordstore.Store, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC)}
	cache := localcache.New(localcache.NewMemoryBackend(nil), nil)
	store := recordstore.New(cache, recordstore.WithClock(clock.Now), recordstore.WithDefaultOwner("u1"))
	m := NewModel(store, clock.Now)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model), store, clock
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTimerStartStopCreatesRecord(t *testing.T) {
	m, store, clock := newModel(t)

	m, _ = send(t, m, runes("s"))
	assert.True(t, m.recording)
	_, ok := store.CurrentRecording()
	assert.True(t, ok)

	clock.now = clock.now.Add(95 * time.Second)
	m, _ = send(t, m, tickMsg(clock.now))
	assert.EqualValues(t, 95, m.elapsed)
	assert.Contains(t, m.View(), "00:01:35")

	m, cmd := send(t, m, runes("s"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	assert.False(t, m.recording)
	require.Len(t, m.records, 1)
	assert.EqualValues(t, 95, m.records[0].Duration)
	assert.EqualValues(t, 1, m.today.TotalRecords)
	assert.Contains(t, m.View(), "1m35s")
}

func TestCancelTimer(t *testing.T) {
	m, store, _ := newModel(t)
	m, _ = send(t, m, runes("s"))
	m, _ = send(t, m, runes("x"))
	assert.False(t, m.recording)
	_, ok := store.CurrentRecording()
	assert.False(t, ok)
	assert.Empty(t, store.Records())
}

func TestNavigateDetailAndDelete(t *testing.T) {
	m, store, _ := newModel(t)
	ctx := context.Background()
	for _, d := range []int64{60, 120} {
		dur := d
		_, err := store.Create(ctx, record.Draft{Duration: &dur, Note: "n"})
		require.NoError(t, err)
	}
	m, _ = send(t, m, m.loadRecords()())
	require.Len(t, m.records, 2)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.selected)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.selected)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, m.selected)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ViewRecordDetail, m.view)
	assert.Contains(t, m.View(), m.detail.ID)

	target := m.detail.ID
	m, cmd := send(t, m, runes("d"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	assert.Equal(t, ViewRecordList, m.view)
	require.Len(t, m.records, 1)
	assert.NotEqual(t, target, m.records[0].ID)
	assert.Equal(t, 0, m.selected)
}

func TestQuitAndEmptyView(t *testing.T) {
	m, _, _ := newModel(t)
	m, _ = send(t, m, m.loadRecords()())
	assert.Contains(t, m.View(), "还没有记录")

	_, cmd := send(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "45s", formatDuration(45))
	assert.Equal(t, "2m05s", formatDuration(125))
	assert.Equal(t, "01:00:01", formatClock(3601))
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "-", formatTime(0, time.UTC))
}
