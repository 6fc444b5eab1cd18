package update

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"daygoal/internal/gateway"
	"daygoal/internal/lifecycle"
	"daygoal/internal/model"
	"daygoal/internal/storage"
	"daygoal/internal/syncqueue"
)

func newTestModel(t *testing.T) Model {
	t.Helper()

	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.MigrateUp(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	tasks, err := storage.NewStore(db, "tasks", []model.Task{})
	if err != nil {
		t.Fatalf("task store: %v", err)
	}
	settings, err := storage.NewStore(db, "user-setting", []model.UserSetting{})
	if err != nil {
		t.Fatalf("settings store: %v", err)
	}

	queue := syncqueue.New(4)
	queue.Start()
	t.Cleanup(queue.Stop)

	// No session is resumed, so the remote endpoint is never dialled.
	manager, err := lifecycle.NewManager(lifecycle.Deps{
		Tasks:    tasks,
		Settings: settings,
		Remote:   gateway.NewClient("http://127.0.0.1:0", nil),
		Queue:    queue,
		Now:      func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return NewModel(manager)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// step drives one Update call and, when the returned command is synchronous
// work, feeds its message back in, mirroring the bubbletea runtime.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	updated := next.(Model)
	if cmd != nil {
		if out := cmd(); out != nil {
			return step(t, updated, out)
		}
	}
	return updated
}

func TestTabCyclesThroughViews(t *testing.T) {
	m := newTestModel(t)

	want := []View{ViewAll, ViewCompleted, ViewDeleted, ViewToday}
	for _, view := range want {
		m = step(t, m, keyMsg("tab"))
		if m.CurrentView != view {
			t.Fatalf("expected view %s, got %s", view, m.CurrentView)
		}
	}
}

func TestQuickAddCreatesTask(t *testing.T) {
	m := newTestModel(t)

	m = step(t, m, keyMsg("a"))
	if !m.Adding {
		t.Fatal("expected quick-add mode")
	}
	m = step(t, m, keyMsg("Buy milk"))
	m = step(t, m, keyMsg("enter"))

	if m.Adding {
		t.Fatal("quick-add mode should end on enter")
	}
	if len(m.Tasks) != 1 || m.Tasks[0].Data.Title != "Buy milk" {
		t.Fatalf("task not created: %+v", m.Tasks)
	}
	if len(m.Visible) != 1 {
		t.Fatalf("new task not visible in today view: %+v", m.Visible)
	}
}

func TestQuickAddEscCancels(t *testing.T) {
	m := newTestModel(t)

	m = step(t, m, keyMsg("a"))
	m = step(t, m, keyMsg("Discard me"))
	m = step(t, m, keyMsg("esc"))

	if m.Adding {
		t.Fatal("esc should leave quick-add mode")
	}
	if len(m.Tasks) != 0 {
		t.Fatalf("cancelled input reached storage: %+v", m.Tasks)
	}
}

func TestCompleteKeyMovesTaskOutOfWorkload(t *testing.T) {
	m := newTestModel(t)
	m = step(t, m, keyMsg("a"))
	m = step(t, m, keyMsg("Finish report"))
	m = step(t, m, keyMsg("enter"))

	m = step(t, m, keyMsg("c"))

	if len(m.Tasks) != 1 || m.Tasks[0].Version != 2 || m.Tasks[0].Data.CompletedAt == nil {
		t.Fatalf("complete not applied: %+v", m.Tasks)
	}
	if m.Status.Text != "task completed" || m.Status.IsError {
		t.Fatalf("expected completion status, got %+v", m.Status)
	}
	m = step(t, m, keyMsg("tab")) // All
	m = step(t, m, keyMsg("tab")) // Completed
	if len(m.Visible) != 1 {
		t.Fatalf("completed view missing task: %+v", m.Visible)
	}
}

func TestDeleteAndRestoreViaKeys(t *testing.T) {
	m := newTestModel(t)
	m = step(t, m, keyMsg("a"))
	m = step(t, m, keyMsg("Oops"))
	m = step(t, m, keyMsg("enter"))

	m = step(t, m, keyMsg("d"))
	if !m.Tasks[0].Data.IsDeleted {
		t.Fatalf("delete not applied: %+v", m.Tasks[0].Data)
	}

	m = step(t, m, keyMsg("tab")) // All
	m = step(t, m, keyMsg("tab")) // Completed
	m = step(t, m, keyMsg("tab")) // Deleted
	if len(m.Visible) != 1 {
		t.Fatalf("deleted view missing task: %+v", m.Visible)
	}

	m = step(t, m, keyMsg("U"))
	if m.Tasks[0].Data.IsDeleted {
		t.Fatalf("restore not applied: %+v", m.Tasks[0].Data)
	}
}

func TestPaletteExecutesGoalCommand(t *testing.T) {
	m := newTestModel(t)

	m = step(t, m, keyMsg("/"))
	if !m.Palette {
		t.Fatal("expected palette mode")
	}
	m = step(t, m, keyMsg("goal light=5"))
	m = step(t, m, keyMsg("enter"))

	if m.Palette {
		t.Fatal("palette should close on enter")
	}
	if m.Status.IsError {
		t.Fatalf("goal command failed: %s", m.Status.Text)
	}
	if !strings.Contains(m.Status.Text, "light=5") {
		t.Fatalf("unexpected status: %s", m.Status.Text)
	}
}

func TestPaletteReportsParseErrors(t *testing.T) {
	m := newTestModel(t)

	m = step(t, m, keyMsg("/"))
	m = step(t, m, keyMsg("frobnicate"))
	m = step(t, m, keyMsg("enter"))

	if !m.Status.IsError {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
}

func TestSyncFailureMsgSetsErrorStatusAndRearms(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(SyncFailureMsg{Failure: syncqueue.Failure{
		Job:  "replace task t1 v2",
		Kind: gateway.KindConflict,
		Err:  errors.New("remote record is newer"),
	}})
	m = next.(Model)

	if !m.Status.IsError || !strings.Contains(m.Status.Text, "conflict") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	if cmd == nil {
		t.Fatal("failure listener must re-arm")
	}
}

func TestSyncKeyWithoutSessionIsRejected(t *testing.T) {
	m := newTestModel(t)

	m = step(t, m, keyMsg("S"))
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "login") {
		t.Fatalf("expected sign-in hint, got %+v", m.Status)
	}
}

func TestQuitKeySetsQuitting(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(keyMsg("q"))
	if !next.(Model).Quitting {
		t.Fatal("expected quitting state")
	}
	if cmd == nil {
		t.Fatal("expected tea.Quit command")
	}
}
