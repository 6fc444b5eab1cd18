package lifecycle

import (
	"context"
	"strings"

	"daygoal/internal/model"
)

// Login asks the remote authority to start out-of-band credential issuance
// for the address. Synchronous; no local state changes.
func (m *Manager) Login(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.ErrInvalidEmail
	}
	return m.remote.Login(ctx, email)
}

// Authenticate exchanges the credential for a session and replaces the local
// replica with the remote collection. From here on every mutation is
// enqueued for reconciliation.
func (m *Manager) Authenticate(ctx context.Context, token string) ([]model.Task, error) {
	userID, err := m.remote.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	m.remote.SetToken(token)
	m.setUser(userID)
	if m.onSession != nil {
		m.onSession(userID, token)
	}
	return m.Bootstrap(ctx)
}

// Resume restores a previously issued session, e.g. from the config file.
func (m *Manager) Resume(userID, token string) {
	if userID == "" || token == "" {
		return
	}
	m.remote.SetToken(token)
	m.setUser(userID)
}

// Bootstrap fetches the authoritative state and overwrites the local
// replica. Requires an active session.
func (m *Manager) Bootstrap(ctx context.Context) ([]model.Task, error) {
	if !m.SessionActive() {
		return nil, ErrNoSession
	}
	tasks, err := m.remote.FetchTasks(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.tasks.Write(ctx, tasks); err != nil {
		return nil, err
	}
	if setting, err := m.remote.FetchSetting(ctx, m.currentUser()); err == nil {
		if err := m.settings.Write(ctx, []model.UserSetting{setting}); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// Setting returns the local user setting, or false when none is stored yet.
func (m *Manager) Setting(ctx context.Context) (model.UserSetting, bool, error) {
	items, err := m.settings.Read(ctx)
	if err != nil {
		return model.UserSetting{}, false, err
	}
	if len(items) == 0 {
		return model.UserSetting{}, false, nil
	}
	return items[0], true, nil
}

// SaveSetting writes the user setting locally and enqueues the remote
// replace. A first-time save creates the record at version 1.
func (m *Manager) SaveSetting(ctx context.Context, content model.UserSettingContent) (model.UserSetting, error) {
	if err := content.Validate(); err != nil {
		return model.UserSetting{}, err
	}
	current, exists, err := m.Setting(ctx)
	if err != nil {
		return model.UserSetting{}, err
	}

	var next model.UserSetting
	if exists {
		next = model.Touch(current, m.now())
		next.Data = content
	} else {
		next = model.New(content, m.now())
	}
	if err := m.settings.Write(ctx, []model.UserSetting{next}); err != nil {
		return model.UserSetting{}, err
	}

	userID := m.currentUser()
	m.enqueue("replace setting "+next.ID, func(ctx context.Context) error {
		return m.remote.ReplaceSetting(ctx, userID, next)
	})
	return next, nil
}

// Goals returns the daily quotas, falling back to a sensible default when no
// setting record exists yet.
func (m *Manager) Goals(ctx context.Context) model.DailyGoals {
	setting, ok, err := m.Setting(ctx)
	if err != nil || !ok {
		return model.DailyGoals{Heavy: 1, Medium: 2, Light: 3}
	}
	return setting.Data.DailyGoals
}
