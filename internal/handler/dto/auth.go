// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/carepredict/authapi/internal/middleware"
	"github.com/carepredict/authapi/internal/model"
	"github.com/carepredict/authapi/internal/service"
)

// ErrInvalidJSON is returned when a request body is not a single JSON
// object of the expected shape.
var ErrInvalidJSON = errors.New("invalid JSON body")

// ErrBodyTooLarge is returned when the body exceeds the configured limit.
var ErrBodyTooLarge = errors.New("request body too large")

// SignupRequest represents the request body for POST /signup.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks every field and returns the typed service input.
func (r SignupRequest) Validate() (service.SignupInput, error) {
	var errs middleware.ValidationErrors

	errs.Add("username", middleware.ValidateUsername(r.Username))
	email, err := middleware.NormalizeEmail(r.Email)
	errs.Add("email", err)
	errs.Add("password", middleware.ValidatePassword(r.Password))

	if err := errs.Err(); err != nil {
		return service.SignupInput{}, err
	}
	return service.SignupInput{
		Username: r.Username,
		Email:    email,
		Password: r.Password,
	}, nil
}

// LoginRequest represents the request body for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the shape of the credentials. Wrong credentials are the
// service's concern and are not reported here.
func (r LoginRequest) Validate() (service.LoginInput, error) {
	var errs middleware.ValidationErrors

	email, err := middleware.NormalizeEmail(r.Email)
	errs.Add("email", err)
	if r.Password == "" {
		errs.Add("password", middleware.ErrPasswordRequired)
	}

	if err := errs.Err(); err != nil {
		return service.LoginInput{}, err
	}
	return service.LoginInput{Email: email, Password: r.Password}, nil
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse is returned by POST /login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// UserResponse is returned by GET /users/me.
type UserResponse = model.UserResponse

// ErrorResponse is the error envelope shared by every endpoint.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries a machine-readable code and a human message.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// FieldMessages flattens validation errors into field -> message.
func FieldMessages(err error) map[string]string {
	var verrs middleware.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field] = fe.Err.Error()
	}
	return fields
}

// DecodeJSON decodes exactly one JSON object into dst, rejecting unknown
// fields and trailing data.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ErrBodyTooLarge
		}
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", ErrInvalidJSON)
	}
	return nil
}
