package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthFailed is returned when the API rejects the token (401/403).
	ErrAuthFailed = errors.New("authentication failed")
	// ErrRepoNotFound is returned when the repository does not exist or is not visible to the token.
	ErrRepoNotFound = errors.New("repository not found")
	// ErrRateLimited is returned when the API rate limit is exhausted.
	ErrRateLimited = errors.New("rate limited")
	// ErrNetworkTimeout is returned when the API did not answer in time.
	ErrNetworkTimeout = errors.New("network timeout")
)

// UserError wraps errors with user-friendly messages
type UserError struct {
	Message string
	Hint    string
	Err     error
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n\nDetails: %v", e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// WrapError converts API errors to user-friendly messages
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var userErr *UserError
	if errors.As(err, &userErr) {
		return err
	}

	switch {
	case errors.Is(err, ErrInvalidRepoURL):
		return &UserError{
			Message: "Invalid repository URL",
			Hint:    "Supported formats:\n  - https://github.com/owner/repo\n  - git@github.com:owner/repo.git\n  - owner/repo",
			Err:     err,
		}

	case errors.Is(err, ErrAuthFailed):
		return &UserError{
			Message: "Authentication failed",
			Hint:    "Check that your API token is valid and can read the repository.\n  - GitHub: Set GITHUB_TOKEN",
			Err:     err,
		}

	case errors.Is(err, ErrRepoNotFound):
		return &UserError{
			Message: "Repository not found",
			Hint:    "Check that the repository URL is correct and that you have access to it with the configured token.",
			Err:     err,
		}

	case errors.Is(err, ErrRateLimited):
		return &UserError{
			Message: "Rate limited by the source-control API",
			Hint:    "Wait for the rate limit window to reset or use an authenticated token.",
			Err:     err,
		}
	}

	return err
}
