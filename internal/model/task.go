package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const maxTitleLength = 500

var (
	ErrEmptyTitle       = errors.New("model: task title is required")
	ErrTitleTooLong     = errors.New("model: task title exceeds 500 characters")
	ErrInvalidWeight    = errors.New("model: invalid task weight")
	ErrWeightAndDueDate = errors.New("model: task weight and due date are mutually exclusive")
	ErrUncategorized    = errors.New("model: task requires either a weight or a due date")
)

// Weight is the effort category of a task without a deadline.
type Weight string

const (
	WeightLight  Weight = "light"
	WeightMedium Weight = "medium"
	WeightHeavy  Weight = "heavy"
)

func (w Weight) IsValid() bool {
	switch w {
	case WeightLight, WeightMedium, WeightHeavy:
		return true
	default:
		return false
	}
}

// TaskContent is the payload of a task record. A task is categorized either
// by effort weight or by a deadline, never both. A nil CompletedAt means the
// task is incomplete. IsDeleted is a soft-delete flag: deleted tasks are
// hidden from normal views but retained for undelete.
type TaskContent struct {
	Title       string     `json:"title"`
	Weight      *Weight    `json:"weight,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	IsDeleted   bool       `json:"isDeleted"`
}

func (t TaskContent) Validate() error {
	title := strings.TrimSpace(t.Title)
	if title == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	if t.Weight != nil && !t.Weight.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidWeight, *t.Weight)
	}
	if t.Weight != nil && t.DueDate != nil {
		return ErrWeightAndDueDate
	}
	if t.Weight == nil && t.DueDate == nil {
		return ErrUncategorized
	}
	return nil
}

// Task is the record form every other package works with.
type Task = Container[TaskContent]
