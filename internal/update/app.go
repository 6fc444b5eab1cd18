package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"daygoal/internal/lifecycle"
	domainmodel "daygoal/internal/model"
	"daygoal/internal/syncqueue"
)

type View string

const (
	ViewToday     View = "Today"
	ViewAll       View = "All"
	ViewCompleted View = "Completed"
	ViewDeleted   View = "Deleted"
)

var viewCycle = []View{ViewToday, ViewAll, ViewCompleted, ViewDeleted}

type StatusBar struct {
	Text    string
	IsError bool
}

type CollectionMsg struct {
	Tasks []domainmodel.Task
	// Status, when set, replaces the status bar text.
	Status string
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type SyncFailureMsg struct {
	Failure syncqueue.Failure
}

type SessionStartedMsg struct {
	Tasks []domainmodel.Task
}

type Model struct {
	manager *lifecycle.Manager

	CurrentView View
	Tasks       []domainmodel.Task
	Visible     []domainmodel.Task
	Cursor      int
	Status      StatusBar
	HelpVisible bool
	Adding      bool
	Palette     bool
	Quitting    bool

	taskList     list.Model
	quickAdd     textinput.Model
	commandInput textinput.Model
	syncSpinner  spinner.Model
	helpModel    help.Model
	syncing      bool
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

func NewModel(manager *lifecycle.Manager) Model {
	m := Model{
		manager:     manager,
		CurrentView: ViewToday,
	}

	m.taskList = list.New([]list.Item{}, list.NewDefaultDelegate(), 56, 12)
	m.taskList.Title = "Tasks"
	m.taskList.SetShowHelp(false)
	m.taskList.SetFilteringEnabled(false)

	m.quickAdd = textinput.New()
	m.quickAdd.Prompt = "add> "
	m.quickAdd.CharLimit = 512
	m.quickAdd.Width = 48

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.syncSpinner = spinner.New()
	m.syncSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCollectionCmd(), waitForFailureCmd(m.manager.Failures()))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case spinner.TickMsg:
		if m.syncing {
			var cmd tea.Cmd
			m.syncSpinner, cmd = m.syncSpinner.Update(typed)
			return m, cmd
		}
	case CollectionMsg:
		m.Tasks = typed.Tasks
		m.refreshVisible()
		if typed.Status != "" {
			m.Status = StatusBar{Text: typed.Status}
		}
		return m, nil
	case SessionStartedMsg:
		m.Tasks = typed.Tasks
		m.syncing = false
		m.refreshVisible()
		m.Status = StatusBar{Text: fmt.Sprintf("synced %d task(s) from server", len(typed.Tasks))}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.syncing = false
		return m, nil
	case SyncFailureMsg:
		f := typed.Failure
		m.Status = StatusBar{
			Text:    fmt.Sprintf("sync %s failed (%s): %v", f.Job, f.Kind, f.Err),
			IsError: true,
		}
		return m, waitForFailureCmd(m.manager.Failures())
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Palette {
		return m.handlePaletteKey(msg)
	}
	if m.Adding {
		return m.handleQuickAddKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.Quitting = true
		return m, tea.Quit
	case "tab":
		m.CurrentView = nextView(m.CurrentView)
		m.Cursor = 0
		m.refreshVisible()
		return m, nil
	case "?":
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case "/":
		m.Palette = true
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		return m, nil
	case "a":
		m.Adding = true
		m.quickAdd.SetValue("")
		m.quickAdd.Focus()
		return m, nil
	case "j", "down":
		if m.Cursor < len(m.Visible)-1 {
			m.Cursor++
		}
		m.syncListCursor()
		return m, nil
	case "k", "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
		m.syncListCursor()
		return m, nil
	case "c":
		return m.mutateSelected("completed", m.manager.Complete)
	case "u":
		return m.mutateSelected("reopened", m.manager.Uncomplete)
	case "d":
		return m.mutateSelected("deleted", m.manager.Delete)
	case "U":
		return m.mutateSelected("restored", m.manager.Undelete)
	case "S":
		if !m.manager.SessionActive() {
			m.Status = StatusBar{Text: "not signed in; /login first", IsError: true}
			return m, nil
		}
		m.syncing = true
		m.Status = StatusBar{Text: "sync started"}
		return m, tea.Batch(m.syncSpinner.Tick, m.bootstrapCmd())
	}
	return m, nil
}

func (m Model) handleQuickAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Adding = false
		m.quickAdd.Blur()
		return m, nil
	case "enter":
		input := strings.TrimSpace(m.quickAdd.Value())
		m.Adding = false
		m.quickAdd.Blur()
		if input == "" {
			return m, nil
		}
		return m, m.createCmd(input)
	default:
		var cmd tea.Cmd
		m.quickAdd, cmd = m.quickAdd.Update(msg)
		return m, cmd
	}
}

func (m Model) mutateSelected(verb string, op func(context.Context, domainmodel.Task) ([]domainmodel.Task, error)) (tea.Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	return m, func() tea.Msg {
		tasks, err := op(context.Background(), task)
		if err != nil {
			return SetStatusMsg{Text: fmt.Sprintf("error: %v", err), IsError: true}
		}
		return CollectionMsg{Tasks: tasks, Status: "task " + verb}
	}
}

func (m Model) selectedTask() (domainmodel.Task, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Visible) {
		return domainmodel.Task{}, false
	}
	return m.Visible[m.Cursor], true
}

func (m *Model) refreshVisible() {
	now := time.Now()
	switch m.CurrentView {
	case ViewToday:
		goals := m.manager.Goals(context.Background())
		m.Visible = domainmodel.TodaysAgenda(m.Tasks, goals, now)
	case ViewCompleted:
		m.Visible = domainmodel.Filter(m.Tasks, domainmodel.Completed)
	case ViewDeleted:
		m.Visible = domainmodel.Filter(m.Tasks, domainmodel.Deleted)
	default:
		m.Visible = domainmodel.Filter(m.Tasks, func(t domainmodel.Task) bool {
			return !t.Data.IsDeleted
		})
	}
	if m.Cursor >= len(m.Visible) {
		m.Cursor = len(m.Visible) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.syncListItems()
}

func (m *Model) syncListItems() {
	items := make([]list.Item, 0, len(m.Visible))
	for _, t := range m.Visible {
		items = append(items, listItem{title: t.Data.Title, description: categoryLabel(t)})
	}
	m.taskList.SetItems(items)
	m.syncListCursor()
}

func (m *Model) syncListCursor() {
	if len(m.Visible) > 0 {
		m.taskList.Select(m.Cursor)
	}
}

func categoryLabel(t domainmodel.Task) string {
	if t.Data.DueDate != nil {
		return "due " + t.Data.DueDate.Format("2006-01-02")
	}
	if t.Data.Weight != nil {
		return string(*t.Data.Weight)
	}
	return "uncategorized"
}

func nextView(v View) View {
	for i, candidate := range viewCycle {
		if candidate == v {
			return viewCycle[(i+1)%len(viewCycle)]
		}
	}
	return ViewToday
}

func (m Model) loadCollectionCmd() tea.Cmd {
	return func() tea.Msg {
		tasks, err := m.manager.Tasks(context.Background())
		if err != nil {
			return SetStatusMsg{Text: fmt.Sprintf("error: %v", err), IsError: true}
		}
		return CollectionMsg{Tasks: tasks}
	}
}

func (m Model) bootstrapCmd() tea.Cmd {
	return func() tea.Msg {
		tasks, err := m.manager.Bootstrap(context.Background())
		if err != nil {
			return SetStatusMsg{Text: fmt.Sprintf("sync error: %v", err), IsError: true}
		}
		return SessionStartedMsg{Tasks: tasks}
	}
}

func waitForFailureCmd(ch <-chan syncqueue.Failure) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return nil
		}
		return SyncFailureMsg{Failure: f}
	}
}
