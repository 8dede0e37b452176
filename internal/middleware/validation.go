// Package middleware provides HTTP middleware and request validation.
package middleware

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
)

// Validation limits.
const (
	// MinUsernameLength is the minimum username length.
	MinUsernameLength = 3

	// MaxUsernameLength is the maximum username length.
	MaxUsernameLength = 50

	// MaxEmailLength is the maximum email length (RFC 5321 path limit).
	MaxEmailLength = 254

	// MaxPasswordBytes is the longest password bcrypt can hash without
	// truncation; the same limit applies to Argon2id for consistency.
	MaxPasswordBytes = 72
)

// Validation errors.
var (
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailInvalid     = errors.New("email is not a valid address")
	ErrEmailTooLong     = errors.New("email exceeds maximum length")
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameLength   = errors.New("username must be between 3 and 50 characters")
	ErrUsernameInvalid  = errors.New("username may only contain letters, digits, '.', '_' and '-'")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooLong  = errors.New("password exceeds 72 bytes")
)

// validUsernamePattern matches valid username characters.
var validUsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// FieldError ties a validation error to the request field that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// ValidationErrors collects every field error in a request.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the field errors to errors.Is and errors.As.
func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, fe := range v {
		errs[i] = fe
	}
	return errs
}

// Add records err against field when err is non-nil.
func (v *ValidationErrors) Add(field string, err error) {
	if err != nil {
		*v = append(*v, FieldError{Field: field, Err: err})
	}
}

// Err returns nil when no errors were recorded.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// NormalizeEmail validates a bare address and returns it with the domain
// lower-cased. Display names ("Alice <a@x.com>") are rejected.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrEmailRequired
	}
	if len(email) > MaxEmailLength {
		return "", ErrEmailTooLong
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return "", ErrEmailInvalid
	}

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", ErrEmailInvalid
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:]), nil
}

// ValidateUsername checks length and character set.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return ErrUsernameLength
	}
	if !validUsernamePattern.MatchString(username) {
		return ErrUsernameInvalid
	}
	return nil
}

// ValidatePassword checks that a password is present and fits bcrypt's limit.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
