package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case recordsLoadedMsg:
		m.loading = false
		m.err = nil
		m.refreshDerived()
		return m, nil

	case recordSavedMsg:
		m.recording = false
		m.elapsed = 0
		m.err = msg.warn
		m.notice = fmt.Sprintf("已保存 %s", formatDuration(msg.record.Duration))
		m.selected = 0
		m.refreshDerived()
		return m, nil

	case recordDeletedMsg:
		m.err = msg.warn
		m.notice = "已删除 " + shortID(msg.record.ID)
		if m.view == ViewRecordDetail {
			m.view = ViewRecordList
			m.detail = nil
		}
		m.refreshDerived()
		return m, nil

	case errorMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case tickMsg:
		m.elapsed = m.store.Elapsed()
		return m, tickCmd()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		return m.handleUp()

	case key.Matches(msg, m.keys.Down):
		return m.handleDown()

	case key.Matches(msg, m.keys.Enter):
		return m.handleEnter()

	case key.Matches(msg, m.keys.Back):
		return m.handleBack()

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.loadRecords()

	case key.Matches(msg, m.keys.Timer):
		return m.handleTimer()

	case key.Matches(msg, m.keys.Cancel):
		if m.recording {
			m.store.CancelRecording(context.Background())
			m.recording = false
			m.elapsed = 0
			m.notice = "计时已取消"
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if rec := m.current(); rec != nil {
			return m, m.deleteRecord(rec.ID)
		}
	}

	return m, nil
}

func (m Model) handleUp() (tea.Model, tea.Cmd) {
	if m.view == ViewRecordList && len(m.records) > 0 {
		m.selected--
		if m.selected < 0 {
			m.selected = len(m.records) - 1
		}
	}
	return m, nil
}

func (m Model) handleDown() (tea.Model, tea.Cmd) {
	if m.view == ViewRecordList && len(m.records) > 0 {
		m.selected++
		if m.selected >= len(m.records) {
			m.selected = 0
		}
	}
	return m, nil
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	if m.view == ViewRecordList && len(m.records) > 0 {
		rec := m.records[m.selected]
		m.detail = &rec
		m.view = ViewRecordDetail
	}
	return m, nil
}

func (m Model) handleBack() (tea.Model, tea.Cmd) {
	if m.view == ViewRecordDetail {
		m.view = ViewRecordList
		m.detail = nil
	}
	return m, nil
}

func (m Model) handleTimer() (tea.Model, tea.Cmd) {
	if m.recording {
		return m, m.stopRecording()
	}
	m.store.StartRecording(context.Background())
	m.recording = true
	m.elapsed = 0
	m.notice = "计时开始"
	return m, nil
}
