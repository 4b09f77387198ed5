package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/ledger/internal/models"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	typeStyles = map[models.EntryType]lipgloss.Style{
		models.EntryBuilt:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		models.EntryHelped:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		models.EntryLearned: lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true),
	}
)

func Header(s string) string { return HeaderStyle.Render(s) }

func Muted(s string) string { return MutedStyle.Render(s) }

func Success(s string) string { return SuccessStyle.Render("✓") + " " + s }

func Warning(s string) string { return WarningStyle.Render("⚠") + " " + s }

func Failure(s string) string { return ErrorStyle.Render("❌") + " " + s }

// TypeLabel renders an entry type in its color.
func TypeLabel(t models.EntryType) string {
	style, ok := typeStyles[t]
	if !ok {
		return string(t)
	}
	return style.Render(t.Label())
}
