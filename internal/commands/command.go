package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Type string

const (
	TypeAdd   Type = "add"
	TypeLogin Type = "login"
	TypeAuth  Type = "auth"
	TypeGoal  Type = "goal"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AddArgs captures "/add <title> weight:<light|medium|heavy>" or
// "/add <title> due:<yyyy-mm-dd>". Exactly one of Weight/Due is set.
type AddArgs struct {
	Title  string
	Weight string
	Due    *time.Time
}

type LoginArgs struct {
	Email string
}

type AuthArgs struct {
	Token string
}

// GoalArgs captures "/goal heavy=N medium=N light=N"; omitted categories
// stay at -1 so handlers can keep the current quota.
type GoalArgs struct {
	Heavy  int
	Medium int
	Light  int
}

type Command struct {
	Type  Type
	Raw   string
	Add   *AddArgs
	Login *LoginArgs
	Auth  *AuthArgs
	Goal  *GoalArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeLogin:
		return parseLogin(input, args)
	case TypeAuth:
		return parseAuth(input, args)
	case TypeGoal:
		return parseGoal(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}

	out := AddArgs{}
	titleParts := make([]string, 0, len(args))
	for _, arg := range args {
		lower := strings.ToLower(arg)
		switch {
		case strings.HasPrefix(lower, "weight:"):
			out.Weight = strings.TrimSpace(strings.TrimPrefix(lower, "weight:"))
		case strings.HasPrefix(lower, "due:"):
			value := strings.TrimSpace(strings.TrimPrefix(lower, "due:"))
			due, err := time.Parse("2006-01-02", value)
			if err != nil {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid due date: %s", value)}
			}
			out.Due = &due
		default:
			titleParts = append(titleParts, arg)
		}
	}

	out.Title = strings.TrimSpace(strings.Join(titleParts, " "))
	if out.Title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	if out.Weight != "" && out.Due != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add takes weight: or due:, not both"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func parseLogin(raw string, args []string) (Command, error) {
	if len(args) != 1 || !strings.Contains(args[0], "@") {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "login requires an email address"}
	}
	return Command{Type: TypeLogin, Raw: raw, Login: &LoginArgs{Email: args[0]}}, nil
}

func parseAuth(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "auth requires a token"}
	}
	return Command{Type: TypeAuth, Raw: raw, Auth: &AuthArgs{Token: args[0]}}, nil
}

func parseGoal(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "goal requires at least one category=count pair"}
	}
	out := GoalArgs{Heavy: -1, Medium: -1, Light: -1}
	for _, arg := range args {
		key, value, found := strings.Cut(strings.ToLower(arg), "=")
		if !found {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid goal pair: %s", arg)}
		}
		count, err := strconv.Atoi(value)
		if err != nil || count < 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid goal count: %s", value)}
		}
		switch key {
		case "heavy":
			out.Heavy = count
		case "medium":
			out.Medium = count
		case "light":
			out.Light = count
		default:
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown goal category: %s", key)}
		}
	}
	return Command{Type: TypeGoal, Raw: raw, Goal: &out}, nil
}
