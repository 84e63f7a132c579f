package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lababa/lababa/internal/record"
)

var (
	// Colors
	colorPrimary = lipgloss.Color("#7C3AED")
	colorSuccess = lipgloss.Color("#22C55E")
	colorWarning = lipgloss.Color("#F59E0B")
	colorDanger  = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")

	// Base styles
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 1)

	styleHelp = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	styleError = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	styleNotice = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleTimer = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	// Table styles
	styleTableHeader = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(colorPrimary).
				Padding(0, 1)

	styleTableRow = lipgloss.NewStyle().
			Padding(0, 1)

	styleTableRowSelected = lipgloss.NewStyle().
				Background(lipgloss.Color("#1F2937")).
				Foreground(lipgloss.Color("#FFFFFF")).
				Padding(0, 1)

	// Box styles
	styleDetailBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2)

	// Label styles
	styleLabel = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(14)

	styleValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))
)

// 每种颜色标签在终端里的近似色。
var recordColors = map[record.Color]lipgloss.Color{
	record.ColorBrown:     lipgloss.Color("#92400E"),
	record.ColorDarkBrown: lipgloss.Color("#451A03"),
	record.ColorYellow:    lipgloss.Color("#EAB308"),
	record.ColorGreen:     lipgloss.Color("#16A34A"),
	record.ColorBlack:     lipgloss.Color("#44403C"),
	record.ColorRed:       lipgloss.Color("#DC2626"),
}

// ColorSwatch renders the record color as a colored dot followed by its name.
func ColorSwatch(c record.Color) string {
	fg, ok := recordColors[c]
	if !ok {
		return styleMuted().Render("● " + string(c))
	}
	return lipgloss.NewStyle().Foreground(fg).Render("●") + " " + string(c)
}

// StatusIcon returns a colored status indicator
func StatusIcon(s record.Status) string {
	switch s {
	case record.StatusNormal:
		return lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("● " + string(s))
	case record.StatusDiarrhea, record.StatusConstipation:
		return lipgloss.NewStyle().Foreground(colorWarning).Bold(true).Render("◐ " + string(s))
	default:
		return styleMuted().Render("? " + string(s))
	}
}

func styleMuted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorMuted)
}
