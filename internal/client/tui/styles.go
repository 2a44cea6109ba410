package tui

import "github.com/charmbracelet/lipgloss"

const (
	boxUnchecked = "☐"
	boxChecked   = "☑"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	navStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Background(lipgloss.Color("236")).Padding(0, 1)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Strikethrough(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	bodyStyle     = lipgloss.NewStyle().Padding(1, 2)
)
