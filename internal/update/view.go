package update

import (
	"context"
	"fmt"

	"daygoal/internal/views"
)

const helpMarkdown = `# daygoal

An offline-first task list. Every change is written locally first and
reconciled with the server in the background, in the order you made it.

## Keys

- **tab** cycle Today / All / Completed / Deleted
- **a** quick add (` + "`title weight:light`" + ` or ` + "`title due:2026-09-01`" + `)
- **j/k** move selection
- **c / u** complete / reopen
- **d / U** delete / restore
- **/** command palette (` + "`/login`" + `, ` + "`/auth`" + `, ` + "`/goal heavy=1 medium=2 light=3`" + `)
- **S** full resync from the server
- **q** quit
`

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		status = "status: " + m.Status.Text
	}

	left := m.renderTaskPanel()
	right := m.renderSessionPanel()
	if m.HelpVisible {
		right = views.RenderMarkdown(helpMarkdown)
	}

	return views.RenderApp(views.AppData{
		Header:        fmt.Sprintf("daygoal | view: %s | %d shown", m.CurrentView, len(m.Visible)),
		LeftPane:      left,
		RightPane:     right,
		StatusLine:    status,
		StatusIsError: m.Status.IsError,
		Footer:        "keys: tab views | a add | c complete | d delete | / commands | ? help | q quit",
	})
}

func (m Model) renderTaskPanel() string {
	items := make([]views.TaskItemData, 0, len(m.Visible))
	for i, t := range m.Visible {
		items = append(items, views.TaskItemData{
			Title:     t.Data.Title,
			Category:  categoryLabel(t),
			Version:   t.Version,
			Completed: t.Data.CompletedAt != nil,
			Deleted:   t.Data.IsDeleted,
			Selected:  i == m.Cursor,
		})
	}
	quickAdd := ""
	if m.Adding {
		quickAdd = m.quickAdd.View()
	}
	return views.RenderTaskPanel(views.TaskPanelData{
		Title:        string(m.CurrentView),
		QuickAddView: quickAdd,
		ListView:     m.taskList.View(),
		Items:        items,
	})
}

func (m Model) renderSessionPanel() string {
	email := ""
	if setting, ok, err := m.manager.Setting(context.Background()); err == nil && ok {
		email = setting.Data.Email
	}
	return views.RenderSessionPanel(views.SessionPanelData{
		SessionActive: m.manager.SessionActive(),
		Email:         email,
		SyncView:      m.syncSpinner.View(),
		Syncing:       m.syncing,
		PaletteView:   m.commandInput.View(),
		PaletteActive: m.Palette,
	})
}
