package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"daygoal/internal/commands"
	domainmodel "daygoal/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette = false
		m.commandInput.Blur()
		return m, nil
	case "enter":
		raw := m.commandInput.Value()
		m.Palette = false
		m.commandInput.Blur()
		return m.executeCommand(raw)
	default:
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		return m, cmd
	}
}

func (m Model) executeCommand(raw string) (tea.Model, tea.Cmd) {
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var teaCmd tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			teaCmd = m.addTaskCmd(a)
			return commands.Result{Message: fmt.Sprintf("adding task: %s", a.Title)}, nil
		},
		Login: func(a commands.LoginArgs) (commands.Result, error) {
			teaCmd = m.loginCmd(a.Email)
			return commands.Result{Message: fmt.Sprintf("requesting login link for %s", a.Email)}, nil
		},
		Auth: func(a commands.AuthArgs) (commands.Result, error) {
			teaCmd = m.authenticateCmd(a.Token)
			return commands.Result{Message: "authenticating"}, nil
		},
		Goal: func(a commands.GoalArgs) (commands.Result, error) {
			teaCmd = m.saveGoalsCmd(a)
			return commands.Result{Message: "updating daily goals"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	return m, teaCmd
}

// createCmd handles quick-add input; it accepts the same weight:/due: tokens
// as the palette's add command.
func (m Model) createCmd(input string) tea.Cmd {
	cmd, err := commands.Parse("add " + input)
	if err != nil {
		status := err.Error()
		return func() tea.Msg { return SetStatusMsg{Text: status, IsError: true} }
	}
	return m.addTaskCmd(*cmd.Add)
}

func (m Model) addTaskCmd(a commands.AddArgs) tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		var weight *domainmodel.Weight
		if a.Due == nil {
			w := domainmodel.WeightLight
			if a.Weight != "" {
				w = domainmodel.Weight(a.Weight)
			}
			weight = &w
		}
		tasks, err := manager.Create(context.Background(), a.Title, weight, a.Due)
		if err != nil {
			return SetStatusMsg{Text: fmt.Sprintf("error: %v", err), IsError: true}
		}
		return CollectionMsg{Tasks: tasks}
	}
}

func (m Model) loginCmd(email string) tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		if err := manager.Login(context.Background(), email); err != nil {
			return SetStatusMsg{Text: fmt.Sprintf("login error: %v", err), IsError: true}
		}
		return SetStatusMsg{Text: "login link sent; finish with /auth <token>"}
	}
}

func (m Model) authenticateCmd(token string) tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		tasks, err := manager.Authenticate(context.Background(), token)
		if err != nil {
			return SetStatusMsg{Text: fmt.Sprintf("auth error: %v", err), IsError: true}
		}
		return SessionStartedMsg{Tasks: tasks}
	}
}

func (m Model) saveGoalsCmd(a commands.GoalArgs) tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		ctx := context.Background()
		setting, ok, err := manager.Setting(ctx)
		if err != nil {
			return SetStatusMsg{Text: fmt.Sprintf("error: %v", err), IsError: true}
		}
		content := setting.Data
		if !ok {
			content = domainmodel.UserSettingContent{Email: "local@daygoal"}
		}
		if a.Heavy >= 0 {
			content.DailyGoals.Heavy = a.Heavy
		}
		if a.Medium >= 0 {
			content.DailyGoals.Medium = a.Medium
		}
		if a.Light >= 0 {
			content.DailyGoals.Light = a.Light
		}
		if _, err := manager.SaveSetting(ctx, content); err != nil {
			return SetStatusMsg{Text: fmt.Sprintf("error: %v", err), IsError: true}
		}
		return SetStatusMsg{Text: fmt.Sprintf("daily goals: heavy=%d medium=%d light=%d",
			content.DailyGoals.Heavy, content.DailyGoals.Medium, content.DailyGoals.Light)}
	}
}
