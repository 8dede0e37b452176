package dto

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/carepredict/authapi/internal/middleware"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"valid", `{"email":"a@x.com","password":"p"}`, nil},
		{"unknown field", `{"email":"a@x.com","password":"p","role":"admin"}`, ErrInvalidJSON},
		{"trailing data", `{"email":"a@x.com","password":"p"}{}`, ErrInvalidJSON},
		{"not an object", `["a@x.com"]`, ErrInvalidJSON},
		{"empty", ``, ErrInvalidJSON},
		{"wrong type", `{"email":42}`, ErrInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
			var dst LoginRequest
			err := DecodeJSON(req, &dst)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeJSON() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"username":"`+strings.Repeat("a", 100)+`"}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 16)

	var dst SignupRequest
	if err := DecodeJSON(req, &dst); !errors.Is(err, ErrBodyTooLarge) {
		t.Errorf("expected ErrBodyTooLarge, got %v", err)
	}
}

func TestSignupRequest_Validate(t *testing.T) {
	input, err := SignupRequest{Username: "alice", Email: "alice@X.com", Password: "pw1"}.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input.Email != "alice@x.com" || input.Username != "alice" || input.Password != "pw1" {
		t.Errorf("unexpected input: %+v", input)
	}

	_, err = SignupRequest{Username: "al", Email: "alice@x.com", Password: "pw1"}.Validate()
	if !errors.Is(err, middleware.ErrUsernameLength) {
		t.Errorf("expected ErrUsernameLength, got %v", err)
	}

	fields := FieldMessages(err)
	if len(fields) != 1 || fields["username"] == "" {
		t.Errorf("unexpected field messages: %v", fields)
	}
}

func TestLoginRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     LoginRequest
		wantErr error
	}{
		{"valid", LoginRequest{Email: "alice@x.com", Password: "pw1"}, nil},
		{"bad email", LoginRequest{Email: "alice", Password: "pw1"}, middleware.ErrEmailInvalid},
		{"empty password", LoginRequest{Email: "alice@x.com"}, middleware.ErrPasswordRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFieldMessages_NonValidationError(t *testing.T) {
	if got := FieldMessages(errors.New("boom")); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
