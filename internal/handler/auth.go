package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/carepredict/authapi/internal/auth"
	"github.com/carepredict/authapi/internal/handler/dto"
	"github.com/carepredict/authapi/internal/middleware"
	"github.com/carepredict/authapi/internal/model"
	"github.com/carepredict/authapi/internal/service"
)

// Authenticator is the authentication flow used by AuthHandler.
type Authenticator interface {
	Signup(ctx context.Context, input service.SignupInput) (*model.User, error)
	Login(ctx context.Context, input service.LoginInput) (string, error)
}

// AuthHandler serves signup, login and the current-user endpoint.
type AuthHandler struct {
	svc             Authenticator
	tokenTTLSeconds int64
	logger          *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. tokenTTLSeconds is reported
// to clients as expires_in.
func NewAuthHandler(svc Authenticator, tokenTTLSeconds int64, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:             svc,
		tokenTTLSeconds: tokenTTLSeconds,
		logger:          logger,
	}
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := dto.DecodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	input, err := req.Validate()
	if err != nil {
		writeValidationError(w, err)
		return
	}

	if _, err := h.svc.Signup(r.Context(), input); err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, "EMAIL_EXISTS", "Email already registered")
		case errors.Is(err, service.ErrDuplicateUsername):
			writeError(w, http.StatusBadRequest, "USERNAME_TAKEN", "Username already taken")
		default:
			h.internalError(w, r, "signup failed", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, dto.MessageResponse{Message: "User created successfully"})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := dto.DecodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	input, err := req.Validate()
	if err != nil {
		writeValidationError(w, err)
		return
	}

	token, err := h.svc.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect email or password")
			return
		}
		h.internalError(w, r, "login failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   h.tokenTTLSeconds,
	})
}

// Me handles GET /users/me. The auth middleware must run first.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())
	writeJSON(w, http.StatusOK, user.ToResponse())
}

func (h *AuthHandler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
}

func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, dto.ErrBodyTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
}

func writeValidationError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
		Error: dto.ErrorBody{
			Code:    "VALIDATION_FAILED",
			Message: "Request validation failed",
			Fields:  dto.FieldMessages(err),
		},
	})
}
