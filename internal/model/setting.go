package model

import (
	"errors"
	"strings"
)

var ErrInvalidEmail = errors.New("model: setting email is required")

// DailyGoals is the per-weight quota of tasks surfaced in the day's
// actionable view. Deadline tasks are never subject to a quota.
type DailyGoals struct {
	Heavy  int `json:"heavy"`
	Medium int `json:"medium"`
	Light  int `json:"light"`
}

// UserSettingContent is the payload of the per-user setting record.
type UserSettingContent struct {
	Email               string     `json:"email"`
	TimezoneOffsetHours int        `json:"timezoneOffsetHours"`
	DailyGoals          DailyGoals `json:"dailyGoals"`
}

func (s UserSettingContent) Validate() error {
	if strings.TrimSpace(s.Email) == "" {
		return ErrInvalidEmail
	}
	if s.DailyGoals.Heavy < 0 || s.DailyGoals.Medium < 0 || s.DailyGoals.Light < 0 {
		return errors.New("model: daily goals must not be negative")
	}
	return nil
}

// UserSetting is the record form of the user setting.
type UserSetting = Container[UserSettingContent]
