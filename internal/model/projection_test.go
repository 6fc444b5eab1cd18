package model

import (
	"fmt"
	"testing"
	"time"
)

func newTestTask(title string, weight *Weight, due *time.Time, createdAt time.Time) Task {
	return Task{
		ID:        "task-" + title,
		Version:   1,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		Data:      TaskContent{Title: title, Weight: weight, DueDate: due},
	}
}

func completedAt(task Task, at time.Time) Task {
	task.Data.CompletedAt = &at
	return task
}

func TestPredicates(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	open := newTestTask("open", weightPtr(WeightLight), nil, now)
	done := completedAt(newTestTask("done", weightPtr(WeightLight), nil, now), now)
	gone := newTestTask("gone", weightPtr(WeightLight), nil, now)
	gone.Data.IsDeleted = true

	if !Incomplete(open) || Incomplete(done) || Incomplete(gone) {
		t.Fatal("Incomplete misclassified")
	}
	if Completed(open) || !Completed(done) || Completed(gone) {
		t.Fatal("Completed misclassified")
	}
	if Deleted(open) || !Deleted(gone) {
		t.Fatal("Deleted misclassified")
	}
	if !CompletedToday(done, now) {
		t.Fatal("expected task completed now to count as completed today")
	}
	if CompletedToday(done, now.AddDate(0, 0, 1)) {
		t.Fatal("expected yesterday's completion to be excluded")
	}
}

func TestFilterOrdersByCreationDesc(t *testing.T) {
	base := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)
	tasks := []Task{
		newTestTask("oldest", weightPtr(WeightLight), nil, base),
		newTestTask("newest", weightPtr(WeightLight), nil, base.Add(2*time.Hour)),
		newTestTask("middle", weightPtr(WeightLight), nil, base.Add(time.Hour)),
	}

	out := Filter(tasks, Incomplete)
	if len(out) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(out))
	}
	for i, want := range []string{"newest", "middle", "oldest"} {
		if out[i].Data.Title != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, out[i].Data.Title)
		}
	}
	if tasks[0].Data.Title != "oldest" {
		t.Fatal("Filter mutated its input")
	}
}

func TestTodaysWorkloadCapsWeightedByQuota(t *testing.T) {
	base := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)
	today := base.Add(4 * time.Hour)

	tasks := make([]Task, 0, 6)
	for i := 0; i < 5; i++ {
		tasks = append(tasks, newTestTask(fmt.Sprintf("light-%d", i), weightPtr(WeightLight), nil, base.Add(time.Duration(i)*time.Minute)))
	}
	due := base.AddDate(0, 0, 3)
	tasks = append(tasks, newTestTask("deadline", nil, &due, base))

	out := TodaysWorkload(tasks, DailyGoals{Light: 2}, today)

	lights := 0
	deadlineSeen := false
	for _, task := range out {
		if task.Data.Weight != nil && *task.Data.Weight == WeightLight {
			lights++
		}
		if task.Data.DueDate != nil {
			deadlineSeen = true
		}
	}
	if lights != 2 {
		t.Fatalf("expected 2 light tasks under quota, got %d", lights)
	}
	if !deadlineSeen {
		t.Fatal("deadline task must bypass quotas")
	}
	// Newest light tasks win the quota slots.
	if out[0].Data.Title != "light-4" || out[1].Data.Title != "light-3" {
		t.Fatalf("unexpected quota winners: %s, %s", out[0].Data.Title, out[1].Data.Title)
	}
}

func TestTodaysWorkloadCompletedTodayConsumesQuota(t *testing.T) {
	base := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)
	today := base.Add(4 * time.Hour)

	// The completed task is the newest, so it takes the single quota slot;
	// the remaining incomplete task must not surface.
	tasks := []Task{
		newTestTask("pending", weightPtr(WeightLight), nil, base),
		completedAt(newTestTask("done-today", weightPtr(WeightLight), nil, base.Add(time.Hour)), today),
	}

	out := TodaysWorkload(tasks, DailyGoals{Light: 1}, today)
	if len(out) != 0 {
		t.Fatalf("expected empty workload, got %d task(s)", len(out))
	}
}

func TestTodaysAgendaScenarioCompleteThenNextDay(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	task := completedAt(newTestTask("Buy milk", weightPtr(WeightLight), nil, now), now)

	// Completed today: still part of the day's accounting but no longer
	// actionable.
	sameDay := TodaysAgenda([]Task{task}, DailyGoals{Light: 3}, now)
	if len(sameDay) != 1 || sameDay[0].Data.Title != "Buy milk" {
		t.Fatalf("expected completed-today task in agenda, got %d task(s)", len(sameDay))
	}
	workload := TodaysWorkload([]Task{task}, DailyGoals{Light: 3}, now)
	if len(workload) != 0 {
		t.Fatalf("completed task must not resurface as actionable, got %d", len(workload))
	}

	nextDay := TodaysAgenda([]Task{task}, DailyGoals{Light: 3}, now.AddDate(0, 0, 1))
	if len(nextDay) != 0 {
		t.Fatalf("expected task excluded a day later, got %d", len(nextDay))
	}
}

func TestTodaysAgendaExcludesDeletedCompletedToday(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	task := completedAt(newTestTask("done-then-gone", weightPtr(WeightLight), nil, now), now)
	task.Data.IsDeleted = true

	out := TodaysAgenda([]Task{task}, DailyGoals{Light: 3}, now)
	if len(out) != 0 {
		t.Fatalf("deleted task surfaced in the agenda: %d task(s)", len(out))
	}
}

func TestTodaysWorkloadExcludesDeleted(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	task := newTestTask("hidden", weightPtr(WeightHeavy), nil, now)
	task.Data.IsDeleted = true

	out := TodaysWorkload([]Task{task}, DailyGoals{Heavy: 5}, now)
	if len(out) != 0 {
		t.Fatalf("expected deleted task excluded, got %d", len(out))
	}
}
