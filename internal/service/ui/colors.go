package ui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle ANSI 6 (Cyan) for headings, readable on light and dark terminals
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	// UsageStyle ANSI 2 (Green) for arguments and usage lines
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle ANSI 8 (Gray) keeps descriptions in the background
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// FlagStyle ANSI 3 (Yellow) for flags
	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// BotStyle ANSI 4 (Blue), the widget's accent color
	BotStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)

	UserStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))

	// StatusStyle ANSI 1 (Red) for inline error lines
	StatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Italic(true)
)

// BotLabel prefixes a bot reply in the terminal.
func BotLabel() string {
	return BotStyle.Render("AquaBot ›")
}
