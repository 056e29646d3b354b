// Package auth signs users in against an identity provider and remembers the
// signed-in user between runs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

// Reason classifies an authentication failure.
type Reason string

const (
	ReasonInvalidEmail       Reason = "invalid-email"
	ReasonWeakPassword       Reason = "weak-password"
	ReasonEmailInUse         Reason = "email-already-in-use"
	ReasonInvalidCredentials Reason = "invalid-credentials"
	ReasonNotSignedIn        Reason = "not-signed-in"
	ReasonProvider           Reason = "provider"
)

// Error is returned by every Provider operation that fails.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "auth: " + string(e.Reason)
	}
	return fmt.Sprintf("auth: %s: %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same Reason, so callers can write
// errors.Is(err, &auth.Error{Reason: auth.ReasonNotSignedIn}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Reason == e.Reason
}

func newError(reason Reason, err error) *Error {
	return &Error{Reason: reason, Err: err}
}

// HasReason reports whether err is an *Error with the given reason.
func HasReason(err error, reason Reason) bool {
	var e *Error
	return errors.As(err, &e) && e.Reason == reason
}

// User is an authenticated account.
type User struct {
	UID      string    `json:"uid"`
	Email    string    `json:"email"`
	Provider string    `json:"provider"`
	IDToken  string    `json:"idToken,omitempty"`
	SignedIn time.Time `json:"signedInAt"`
}

// Provider is an identity backend.
type Provider interface {
	Name() string
	SignUp(ctx context.Context, email, password string) (User, error)
	SignIn(ctx context.Context, email, password string) (User, error)
	SignOut(ctx context.Context) error
	// CurrentUser returns the signed-in user or an error with
	// ReasonNotSignedIn.
	CurrentUser(ctx context.Context) (User, error)
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string, signUp bool) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return newError(ReasonInvalidEmail, fmt.Errorf("%q is not a valid email address", email))
	}
	if signUp && len(password) < MinPasswordLength {
		return newError(ReasonWeakPassword, fmt.Errorf("password must be at least %d characters", MinPasswordLength))
	}
	if password == "" {
		return newError(ReasonInvalidCredentials, errors.New("password is required"))
	}
	return nil
}
