package store

import "fmt"

// Result error codes produced by DefaultErrorDescriber.
const (
	CodeDefaultError           = "DefaultError"
	CodeConcurrencyFailure     = "ConcurrencyFailure"
	CodeDuplicateUserName      = "DuplicateUserName"
	CodeDuplicateEmail         = "DuplicateEmail"
	CodeDuplicateRoleName      = "DuplicateRoleName"
	CodeInvalidUserName        = "InvalidUserName"
	CodeInvalidEmail           = "InvalidEmail"
	CodeInvalidRoleName        = "InvalidRoleName"
	CodeLoginAlreadyAssociated = "LoginAlreadyAssociated"
	CodeUserAlreadyInRole      = "UserAlreadyInRole"
	CodeUserNotInRole          = "UserNotInRole"
	CodeUserLockoutNotEnabled  = "UserLockoutNotEnabled"
)

// ErrorDescriber produces the ResultErrors returned by stores and managers.
// Applications replace it to localize or reword descriptions; codes are stable.
type ErrorDescriber interface {
	DefaultError() ResultError
	ConcurrencyFailure() ResultError
	DuplicateUserName(userName string) ResultError
	DuplicateEmail(email string) ResultError
	DuplicateRoleName(role string) ResultError
	InvalidUserName(userName string) ResultError
	InvalidEmail(email string) ResultError
	InvalidRoleName(role string) ResultError
	LoginAlreadyAssociated() ResultError
	UserAlreadyInRole(role string) ResultError
	UserNotInRole(role string) ResultError
	UserLockoutNotEnabled() ResultError
}

// DefaultErrorDescriber is the stock English ErrorDescriber.
type DefaultErrorDescriber struct{}

var _ ErrorDescriber = DefaultErrorDescriber{}

func (DefaultErrorDescriber) DefaultError() ResultError {
	return ResultError{Code: CodeDefaultError, Description: "An unknown failure has occurred."}
}

func (DefaultErrorDescriber) ConcurrencyFailure() ResultError {
	return ResultError{
		Code:        CodeConcurrencyFailure,
		Description: "Optimistic concurrency failure, object has been modified.",
	}
}

func (DefaultErrorDescriber) DuplicateUserName(userName string) ResultError {
	return ResultError{
		Code:        CodeDuplicateUserName,
		Description: fmt.Sprintf("Username '%s' is already taken.", userName),
	}
}

func (DefaultErrorDescriber) DuplicateEmail(email string) ResultError {
	return ResultError{
		Code:        CodeDuplicateEmail,
		Description: fmt.Sprintf("Email '%s' is already taken.", email),
	}
}

func (DefaultErrorDescriber) DuplicateRoleName(role string) ResultError {
	return ResultError{
		Code:        CodeDuplicateRoleName,
		Description: fmt.Sprintf("Role name '%s' is already taken.", role),
	}
}

func (DefaultErrorDescriber) InvalidUserName(userName string) ResultError {
	return ResultError{
		Code:        CodeInvalidUserName,
		Description: fmt.Sprintf("Username '%s' is invalid.", userName),
	}
}

func (DefaultErrorDescriber) InvalidEmail(email string) ResultError {
	return ResultError{
		Code:        CodeInvalidEmail,
		Description: fmt.Sprintf("Email '%s' is invalid.", email),
	}
}

func (DefaultErrorDescriber) InvalidRoleName(role string) ResultError {
	return ResultError{
		Code:        CodeInvalidRoleName,
		Description: fmt.Sprintf("Role name '%s' is invalid.", role),
	}
}

func (DefaultErrorDescriber) LoginAlreadyAssociated() ResultError {
	return ResultError{
		Code:        CodeLoginAlreadyAssociated,
		Description: "A user with this login already exists.",
	}
}

func (DefaultErrorDescriber) UserAlreadyInRole(role string) ResultError {
	return ResultError{
		Code:        CodeUserAlreadyInRole,
		Description: fmt.Sprintf("User already in role '%s'.", role),
	}
}

func (DefaultErrorDescriber) UserNotInRole(role string) ResultError {
	return ResultError{
		Code:        CodeUserNotInRole,
		Description: fmt.Sprintf("User is not in role '%s'.", role),
	}
}

func (DefaultErrorDescriber) UserLockoutNotEnabled() ResultError {
	return ResultError{
		Code:        CodeUserLockoutNotEnabled,
		Description: "Lockout is not enabled for this user.",
	}
}
