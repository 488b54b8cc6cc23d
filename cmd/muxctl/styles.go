package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	accentColor = lipgloss.Color("#3B82F6")
	mutedColor  = lipgloss.Color("#6B7280")
	okColor     = lipgloss.Color("#10B981")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	okStyle     = lipgloss.NewStyle().Foreground(okColor)
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

// newTable returns a bordered table with the shared styles.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}
