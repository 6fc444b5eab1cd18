package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add   func(AddArgs) (Result, error)
	Login func(LoginArgs) (Result, error)
	Auth  func(AuthArgs) (Result, error)
	Goal  func(GoalArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "add handler not configured"}
		}
		return handlers.Add(*cmd.Add)
	case TypeLogin:
		if handlers.Login == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "login handler not configured"}
		}
		return handlers.Login(*cmd.Login)
	case TypeAuth:
		if handlers.Auth == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "auth handler not configured"}
		}
		return handlers.Auth(*cmd.Auth)
	case TypeGoal:
		if handlers.Goal == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "goal handler not configured"}
		}
		return handlers.Goal(*cmd.Goal)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
