package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"daygoal/internal/gateway"
	"daygoal/internal/model"
	"daygoal/internal/storage"
	"daygoal/internal/syncqueue"
)

var ErrNoSession = errors.New("lifecycle: no active session")

// Deps are the collaborators of the manager. Everything is injected; the
// package holds no ambient instances.
type Deps struct {
	Tasks    *storage.Store[model.TaskContent]
	Settings *storage.Store[model.UserSettingContent]
	Remote   *gateway.Client
	Queue    *syncqueue.Queue
	Now      func() time.Time
	// OnSession is invoked after a successful authentication so the caller
	// can persist the credential. Optional.
	OnSession func(userID, token string)
}

// Manager owns every task transition. Each transition validates first, bumps
// the record version, writes the local store synchronously and returns the
// new full collection before the remote call resolves. Remote mutations are
// enqueued in commit order; a remote failure never rolls the local store
// back.
type Manager struct {
	tasks     *storage.Store[model.TaskContent]
	settings  *storage.Store[model.UserSettingContent]
	remote    *gateway.Client
	queue     *syncqueue.Queue
	now       func() time.Time
	onSession func(userID, token string)

	// userID is read from command goroutines and the queue worker while
	// Authenticate/Resume may swap it.
	mu     sync.RWMutex
	userID string
}

func NewManager(deps Deps) (*Manager, error) {
	if deps.Tasks == nil || deps.Settings == nil {
		return nil, errors.New("lifecycle: nil store")
	}
	if deps.Remote == nil {
		return nil, errors.New("lifecycle: nil remote client")
	}
	if deps.Queue == nil {
		return nil, errors.New("lifecycle: nil sync queue")
	}
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Manager{
		tasks:     deps.Tasks,
		settings:  deps.Settings,
		remote:    deps.Remote,
		queue:     deps.Queue,
		now:       now,
		onSession: deps.OnSession,
	}, nil
}

// Failures is the asynchronous error-notification stream for remote
// outcomes. Synchronous validation and integrity errors are returned by the
// methods themselves.
func (m *Manager) Failures() <-chan syncqueue.Failure {
	return m.queue.Failures()
}

// SessionActive reports whether mutations are being reconciled with the
// remote authority.
func (m *Manager) SessionActive() bool {
	return m.currentUser() != ""
}

func (m *Manager) currentUser() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userID
}

func (m *Manager) setUser(userID string) {
	m.mu.Lock()
	m.userID = userID
	m.mu.Unlock()
}

// Tasks returns the current local collection.
func (m *Manager) Tasks(ctx context.Context) ([]model.Task, error) {
	return m.tasks.Read(ctx)
}

// Create validates and stores a new task, then enqueues the remote create.
// Exactly one of weight or dueDate must be supplied.
func (m *Manager) Create(ctx context.Context, title string, weight *model.Weight, dueDate *time.Time) ([]model.Task, error) {
	content := model.TaskContent{
		Title:   strings.TrimSpace(title),
		Weight:  weight,
		DueDate: dueDate,
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}
	task := model.New(content, m.now())
	if err := m.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	m.enqueue("create task "+task.ID, func(ctx context.Context) error {
		return m.remote.CreateTask(ctx, task)
	})
	return m.tasks.Read(ctx)
}

// EditRequest carries the editable fields of a task. Completion and deletion
// state go through their own transitions.
type EditRequest struct {
	Title   string
	Weight  *model.Weight
	DueDate *time.Time
}

// Edit applies field changes and bumps the version. Invalid changes are
// rejected before any write.
func (m *Manager) Edit(ctx context.Context, task model.Task, req EditRequest) ([]model.Task, error) {
	return m.transition(ctx, task, func(c *model.TaskContent) {
		c.Title = strings.TrimSpace(req.Title)
		c.Weight = req.Weight
		c.DueDate = req.DueDate
	})
}

// Complete stamps the completion instant. Completing an already-completed
// task only re-stamps the timestamp; no other field changes.
func (m *Manager) Complete(ctx context.Context, task model.Task) ([]model.Task, error) {
	completedAt := m.now()
	return m.transition(ctx, task, func(c *model.TaskContent) {
		c.CompletedAt = &completedAt
	})
}

// Uncomplete clears the completion instant.
func (m *Manager) Uncomplete(ctx context.Context, task model.Task) ([]model.Task, error) {
	return m.transition(ctx, task, func(c *model.TaskContent) {
		c.CompletedAt = nil
	})
}

// Delete soft-deletes the task. CompletedAt is kept so undelete restores the
// record exactly.
func (m *Manager) Delete(ctx context.Context, task model.Task) ([]model.Task, error) {
	return m.transition(ctx, task, func(c *model.TaskContent) {
		c.IsDeleted = true
	})
}

// Undelete clears the soft-delete flag.
func (m *Manager) Undelete(ctx context.Context, task model.Task) ([]model.Task, error) {
	return m.transition(ctx, task, func(c *model.TaskContent) {
		c.IsDeleted = false
	})
}

func (m *Manager) transition(ctx context.Context, task model.Task, apply func(*model.TaskContent)) ([]model.Task, error) {
	next := model.Touch(task, m.now())
	apply(&next.Data)
	if err := next.Data.Validate(); err != nil {
		return nil, err
	}
	if err := m.tasks.Update(ctx, next); err != nil {
		return nil, err
	}
	m.enqueue(fmt.Sprintf("replace task %s v%d", next.ID, next.Version), func(ctx context.Context) error {
		return m.remote.ReplaceTask(ctx, next)
	})
	return m.tasks.Read(ctx)
}

// enqueue hands the mutation to the ordered queue when a session is active.
// Without a session the local store simply runs ahead of the remote
// authority.
func (m *Manager) enqueue(name string, run func(ctx context.Context) error) {
	if !m.SessionActive() {
		return
	}
	_ = m.queue.Enqueue(syncqueue.Job{Name: name, Run: run})
}
