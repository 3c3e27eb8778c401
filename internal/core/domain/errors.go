package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("access forbidden")
	ErrOffline           = errors.New("offline")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrCompanyNotFound   = errors.New("company not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrObserverInstalled = errors.New("session observer already installed")
	ErrSessionNotFound   = errors.New("session not found")
	ErrValidation        = errors.New("validation failed")
)

// TransitionError is returned when a state machine rejects a move.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s (from %s to %s)", e.Entity, ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// AuthCode identifies an authentication failure.
type AuthCode string

const (
	AuthInvalidCredentials AuthCode = "invalid-credential"
	AuthUserNotFound       AuthCode = "user-not-found"
	AuthTooManyRequests    AuthCode = "too-many-requests"
	AuthEmailInUse         AuthCode = "email-already-in-use"
	AuthInvalidEmail       AuthCode = "invalid-email"
	AuthWeakPassword       AuthCode = "weak-password"
	AuthPopupClosed        AuthCode = "popup-closed-by-user"
	AuthPopupBlocked       AuthCode = "popup-blocked"
	AuthNetwork            AuthCode = "network-request-failed"
	AuthOffline            AuthCode = "offline"
	AuthInvalidToken       AuthCode = "invalid-token"
)

var authMessages = map[AuthCode]string{
	AuthInvalidCredentials: "Invalid email or password.",
	AuthUserNotFound:       "No account found with this email.",
	AuthTooManyRequests:    "Too many failed attempts. Please try again later.",
	AuthEmailInUse:         "This email is already in use. Try logging in instead.",
	AuthInvalidEmail:       "Invalid email address format.",
	AuthWeakPassword:       "Password is too weak. Please use a stronger password.",
	AuthPopupClosed:        "Login cancelled. You closed the login window.",
	AuthPopupBlocked:       "Login popup was blocked. Please allow popups for this site.",
	AuthNetwork:            "Network error. Please check your internet connection.",
	AuthOffline:            "You are offline. Please check your internet connection and try again.",
	AuthInvalidToken:       "Your session has expired. Please sign in again.",
}

// AuthError is an authentication failure with a fixed user-facing message.
// Two AuthErrors match under errors.Is when their codes are equal.
type AuthError struct {
	Code AuthCode
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth/%s: %v", e.Code, e.Err)
	}
	return "auth/" + string(e.Code)
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Code == e.Code
}

// Message is the text shown to the user.
func (e *AuthError) Message() string {
	if m, ok := authMessages[e.Code]; ok {
		return m
	}
	return "Authentication failed. Please try again."
}

// NewAuthError wraps cause under code.
func NewAuthError(code AuthCode, cause error) *AuthError {
	return &AuthError{Code: code, Err: cause}
}

var (
	ErrInvalidCredentials = &AuthError{Code: AuthInvalidCredentials}
	ErrUserNotFound       = &AuthError{Code: AuthUserNotFound}
	ErrUserExists         = &AuthError{Code: AuthEmailInUse}
	ErrRateLimited        = &AuthError{Code: AuthTooManyRequests}
	ErrInvalidEmail       = &AuthError{Code: AuthInvalidEmail}
	ErrWeakPassword       = &AuthError{Code: AuthWeakPassword}
	ErrPopupClosed        = &AuthError{Code: AuthPopupClosed}
	ErrPopupBlocked       = &AuthError{Code: AuthPopupBlocked}
	ErrNetworkUnreachable = &AuthError{Code: AuthNetwork}
	ErrAuthOffline        = &AuthError{Code: AuthOffline}
	ErrInvalidToken       = &AuthError{Code: AuthInvalidToken}
)

// ErrCacheMiss is returned by read caches when a key is absent.
var ErrCacheMiss = errors.New("cache miss")
