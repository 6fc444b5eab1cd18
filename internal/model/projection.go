package model

import (
	"sort"
	"time"
)

// Incomplete reports whether the task is still actionable: never completed
// and not soft-deleted.
func Incomplete(t Task) bool {
	return t.Data.CompletedAt == nil && !t.Data.IsDeleted
}

// Completed reports whether the task has been completed and not soft-deleted.
func Completed(t Task) bool {
	return t.Data.CompletedAt != nil && !t.Data.IsDeleted
}

// Deleted reports whether the task is soft-deleted.
func Deleted(t Task) bool {
	return t.Data.IsDeleted
}

// CompletedToday reports whether the task was completed on the same calendar
// day as today, evaluated in today's location.
func CompletedToday(t Task, today time.Time) bool {
	if t.Data.CompletedAt == nil {
		return false
	}
	y1, m1, d1 := t.Data.CompletedAt.In(today.Location()).Date()
	y2, m2, d2 := today.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Filter returns the tasks matching the predicate, ordered by creation time
// descending. The input is never mutated.
func Filter(tasks []Task, keep func(Task) bool) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	sortByCreationDesc(out)
	return out
}

// TodaysAgenda selects the day's tasks for quota accounting. Candidates are
// the incomplete tasks plus those completed today, ordered by creation time
// descending. Weighted tasks are capped per category by the daily goals;
// deadline tasks carry no quota. A task completed earlier today stays in the
// agenda and consumes its category's quota; soft-deleted tasks never appear,
// even when completed today.
func TodaysAgenda(tasks []Task, goals DailyGoals, today time.Time) []Task {
	candidates := Filter(tasks, func(t Task) bool {
		if t.Data.IsDeleted {
			return false
		}
		return Incomplete(t) || CompletedToday(t, today)
	})

	remaining := map[Weight]int{
		WeightHeavy:  goals.Heavy,
		WeightMedium: goals.Medium,
		WeightLight:  goals.Light,
	}

	selected := make([]Task, 0, len(candidates))
	for _, t := range candidates {
		if t.Data.Weight == nil {
			selected = append(selected, t)
			continue
		}
		if remaining[*t.Data.Weight] > 0 {
			remaining[*t.Data.Weight]--
			selected = append(selected, t)
		}
	}
	return selected
}

// TodaysWorkload is the actionable subset of the agenda: the quota pass runs
// over incomplete and completed-today tasks alike, then completed tasks are
// dropped so they never resurface as actionable while still consuming their
// category's quota. Descending creation order is preserved.
func TodaysWorkload(tasks []Task, goals DailyGoals, today time.Time) []Task {
	agenda := TodaysAgenda(tasks, goals, today)
	out := make([]Task, 0, len(agenda))
	for _, t := range agenda {
		if Incomplete(t) {
			out = append(out, t)
		}
	}
	return out
}

func sortByCreationDesc(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
