package tui

import "github.com/charmbracelet/lipgloss"

var (
	sectionHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3be8c")).Bold(true)
	helperStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	searchHighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("190"))

	heroEmberColor         = lipgloss.Color("#0b1a2b")
	heroTextColor          = lipgloss.Color("#e6f1ff")
	heroSecondaryTextColor = lipgloss.Color("#7aa2f7")

	taglineStyle       = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	currentLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	pageStyle          = lipgloss.NewStyle().Padding(1, 2)
	logoFaceStyle      = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor).Background(heroEmberColor)
	logoShadowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#050b12"))
	logoContainerStyle = lipgloss.NewStyle().Padding(0, 1)
	logoArtLines       = []string{
		"███╗   ███╗  ██╗   ██╗  ███╗   ██╗  ██╗  ███╗   ██╗  ███╗   ██╗  ",
		"████╗ ████║  ██║   ██║  ████╗  ██║  ██║  ████╗  ██║  ████╗  ██║  ",
		"██╔████╔██║  ██║   ██║  ██╔██╗ ██║  ██║  ██╔██╗ ██║  ██╔██╗ ██║  ",
		"██║╚██╔╝██║  ██║   ██║  ██║╚██╗██║  ██║  ██║╚██╗██║  ██║╚██╗██║  ",
		"██║ ╚═╝ ██║  ╚██████╔╝  ██║ ╚████║  ██║  ██║ ╚████║  ██║ ╚████║  ",
		"╚═╝     ╚═╝   ╚═════╝   ╚═╝  ╚═══╝  ╚═╝  ╚═╝  ╚═══╝  ╚═╝  ╚═══╝  ",
	}
)
