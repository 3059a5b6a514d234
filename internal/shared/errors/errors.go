package errors

import (
	"context"
	"errors"
)

var (
	ErrMissingBotToken       = errors.New("TELEGRAM_BOT_TOKEN environment variable is required")
	ErrMissingAPICredentials = errors.New("API_ID and API_HASH environment variables are required")
	ErrSessionUnauthorized   = errors.New("user session is not authorized, run the login command first")
	ErrBotNotReady           = errors.New("bot is not initialized")

	// ErrParse marks a malformed or unrecognized post reference.
	ErrParse = errors.New("invalid post reference")
	// ErrAccess marks a channel or message the user session cannot see.
	ErrAccess = errors.New("channel is not accessible to the user session")
	// ErrSizeLimit marks a payload above the current entitlement ceiling.
	ErrSizeLimit = errors.New("file size limit exceeded")
)

// KindOf classifies err. Cancellation wins over every other kind so that
// a killed operation is never reported as a failure.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindGeneric
	case errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, ErrParse):
		return KindParse
	case errors.Is(err, ErrAccess):
		return KindAccess
	case errors.Is(err, ErrSizeLimit):
		return KindSizeLimit
	default:
		return KindGeneric
	}
}
