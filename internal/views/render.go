package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Header        string
	LeftPane      string
	RightPane     string
	StatusLine    string
	StatusIsError bool
	Footer        string
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	doneStyle    = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))
	deletedStyle = lipgloss.NewStyle().Faint(true)
)

func RenderApp(data AppData) string {
	left := panelStyle.Width(58).Render(data.LeftPane)
	right := panelStyle.Width(58).Render(data.RightPane)
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	status := statusStyle.Render(data.StatusLine)
	if data.StatusIsError {
		status = errorStyle.Render(data.StatusLine)
	}

	lines := []string{
		headerStyle.Render(data.Header),
		row,
		status,
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

type TaskItemData struct {
	Title     string
	Category  string
	Version   int
	Completed bool
	Deleted   bool
	Selected  bool
}

type TaskPanelData struct {
	Title        string
	QuickAddView string
	ListView     string
	Items        []TaskItemData
}

func RenderTaskPanel(data TaskPanelData) string {
	var b strings.Builder
	b.WriteString(data.Title + ":\n")
	if data.QuickAddView != "" {
		b.WriteString(data.QuickAddView + "\n")
	}
	b.WriteString(data.ListView + "\n")
	for _, item := range data.Items {
		cursor := " "
		if item.Selected {
			cursor = ">"
		}
		line := fmt.Sprintf("%s %s (%s, v%d)", cursor, item.Title, item.Category, item.Version)
		switch {
		case item.Deleted:
			line = deletedStyle.Render(line)
		case item.Completed:
			line = doneStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if len(data.Items) == 0 {
		b.WriteString("(empty)\n")
	}
	return strings.TrimSpace(b.String())
}

type SessionPanelData struct {
	SessionActive bool
	Email         string
	SyncView      string
	Syncing       bool
	PaletteView   string
	PaletteActive bool
}

func RenderSessionPanel(data SessionPanelData) string {
	var b strings.Builder
	b.WriteString("session:\n")
	if data.SessionActive {
		b.WriteString(fmt.Sprintf("signed in as %s\n", data.Email))
	} else {
		b.WriteString("offline (use /login <email>, then /auth <token>)\n")
	}
	if data.Syncing {
		b.WriteString("sync: " + data.SyncView + " running\n")
	}
	if data.PaletteActive {
		b.WriteString("\ncommand:\n" + data.PaletteView + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
