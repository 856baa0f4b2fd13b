package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).MarginTop(1)

	navStyle       = lipgloss.NewStyle().PaddingLeft(1)
	navActiveStyle = lipgloss.NewStyle().PaddingLeft(1).Bold(true).
			Background(lipgloss.Color("#2D3748")).
			Foreground(lipgloss.Color("#FFFFFF"))
	sectionStyle         = lipgloss.NewStyle().PaddingLeft(3)
	sectionDoneStyle     = lipgloss.NewStyle().PaddingLeft(3).Foreground(lipgloss.Color("#4CAF50"))
	sectionSelectedStyle = lipgloss.NewStyle().PaddingLeft(3).Bold(true).
				Background(lipgloss.Color("#2D3748"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#555555")).
			Padding(1, 2).
			Width(24).
			Height(5).
			Align(lipgloss.Center)
	cardFocusStyle = cardStyle.
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Bold(true)
	cardDoneStyle = cardStyle.
			BorderForeground(lipgloss.Color("#4CAF50"))

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(1, 2)
	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Background(lipgloss.Color("#5B8DEF")).
			Foreground(lipgloss.Color("#FFFFFF"))
	buttonDisabledStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Background(lipgloss.Color("#3A3A3A")).
				Foreground(lipgloss.Color("#777777"))

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
)
