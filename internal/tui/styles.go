package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/chantier/internal/model"
)

// Color palette, shared with the PDF report
var (
	// Project status colors
	InProgress = lipgloss.Color("#3B82F6") // Blue
	Completed  = lipgloss.Color("#10B981") // Emerald
	Suspended  = lipgloss.Color("#F59E0B") // Amber

	// Amount colors
	Positive = lipgloss.Color("#10B981")
	Negative = lipgloss.Color("#F43F5E") // Rose

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Surface   = lipgloss.Color("#16213e")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	ErrorFg   = lipgloss.Color("#FF6B6B")
)

var tableBorder = lipgloss.NormalBorder()

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	// Sidebar
	SidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(Border).
			Padding(1, 1)

	ProjectItemStyle = lipgloss.NewStyle().
				Padding(0, 1)

	ProjectItemSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(Surface).
					Bold(true)

	// Main pane
	DetailStyle = lipgloss.NewStyle().
			Padding(1, 2)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1).
			Width(22)

	CardLabelStyle = lipgloss.NewStyle().Foreground(TextMuted)
	CardValueStyle = lipgloss.NewStyle().Bold(true).Foreground(Text)

	TabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(TextMuted)
	TabActiveStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(Primary).Bold(true).Underline(true)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	ErrorStyle = lipgloss.NewStyle().Foreground(ErrorFg).Bold(true)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// StatusColor returns the color of a project status badge
func StatusColor(s model.ProjectStatus) lipgloss.Color {
	switch s {
	case model.ProjectCompleted:
		return Completed
	case model.ProjectSuspended:
		return Suspended
	default:
		return InProgress
	}
}

// FormatStatus renders a colored status badge
func FormatStatus(s model.ProjectStatus) string {
	return lipgloss.NewStyle().Foreground(StatusColor(s)).Render("● " + string(s))
}

// amountStyle colors money by its sign
func amountStyle(m model.Money) lipgloss.Style {
	if m < 0 {
		return CardValueStyle.Foreground(Negative)
	}
	return CardValueStyle.Foreground(Positive)
}
