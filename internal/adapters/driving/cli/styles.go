package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// palette is the colour set used by command output.
type palette struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Border  lipgloss.Color
}

func defaultPalette() palette {
	return palette{
		Primary: lipgloss.Color("#7C3AED"), // Purple
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Warning: lipgloss.Color("#F9E2AF"), // Yellow
		Error:   lipgloss.Color("#F38BA8"), // Red
		Border:  lipgloss.Color("#45475A"), // Border gray
	}
}

// outputStyles contains the lipgloss styles shared by all commands.
// lipgloss drops colour codes when the output is not a terminal, so
// rendered text stays plain in pipes and tests.
type outputStyles struct {
	colours palette

	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
}

func newOutputStyles(p palette) *outputStyles {
	return &outputStyles{
		colours: p,
		Title:   lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		Muted:   lipgloss.NewStyle().Foreground(p.Muted),
		Success: lipgloss.NewStyle().Foreground(p.Success),
		Warning: lipgloss.NewStyle().Foreground(p.Warning),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(p.Error),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(p.Primary).Padding(0, 1),
		Cell:    lipgloss.NewStyle().Padding(0, 1),
	}
}

var styles = newOutputStyles(defaultPalette())

// renderTable draws rows under headers with a rounded border.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.colours.Border)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			return styles.Cell
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}
