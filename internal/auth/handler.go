package auth

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/redmonkez12/go-auth-service/internal/httputil"
	"github.com/redmonkez12/go-auth-service/internal/logging"
	"github.com/redmonkez12/go-auth-service/internal/user"
)

const maxBodyBytes = 1 << 20

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name,omitempty"`
	Password    string  `json:"password"`
}

// LoginRequest is the JSON form of the login request.
// Username carries the email, matching the OAuth2 password form.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name"`
	Active      bool      `json:"active"`
	Premium     bool      `json:"premium"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Active:      u.Active,
		Premium:     u.Premium,
		CreatedAt:   u.CreatedAt,
	}
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a new account with email, optional display name and password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration credentials"
// @Success      201 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      409 {object} httputil.ErrorResponse "Email already registered"
// @Failure      422 {object} httputil.ErrorResponse "Invalid email, display name or password"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RegisterRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	newUser, err := h.service.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		respondServiceError(w, logger, "registration", err)
		return
	}

	httputil.RespondJSON(w, NewUserResponse(newUser), http.StatusCreated)
}

// Login handles user login
// @Summary      Login
// @Description  Exchange email and password for a bearer access token. Accepts an OAuth2 password form or JSON.
// @Tags         auth
// @Accept       x-www-form-urlencoded,json
// @Produce      json
// @Param        username formData string true "Email address"
// @Param        password formData string true "Password"
// @Success      200 {object} AuthToken
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Invalid email or password"
// @Failure      422 {object} httputil.ErrorResponse "Missing username or password"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	email, password, err := readLoginRequest(w, r)
	if err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if email == "" || password == "" {
		httputil.RespondErrorWithCode(w, "username and password are required", httputil.CodeInvalidCredentialShape, http.StatusUnprocessableEntity)
		return
	}

	token, err := h.service.Login(r.Context(), email, password)
	if err != nil {
		respondServiceError(w, logger, "login", err)
		return
	}

	httputil.RespondJSON(w, token, http.StatusOK)
}

// Me returns the authenticated user
// @Summary      Current user
// @Description  Return the account the bearer token was issued to.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} UserResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		httputil.RespondUnauthorized(w, "unauthorized", httputil.CodeUnauthorized)
		return
	}

	httputil.RespondJSON(w, NewUserResponse(u), http.StatusOK)
}

func readLoginRequest(w http.ResponseWriter, r *http.Request) (email, password string, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", "", err
		}
		email = req.Username
		if email == "" {
			email = req.Email
		}
		return email, req.Password, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", "", err
	}
	return r.PostForm.Get("username"), r.PostForm.Get("password"), nil
}

// respondServiceError maps service errors to status codes. Details stay in the log.
func respondServiceError(w http.ResponseWriter, logger *logging.Logger, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentialShape):
		logger.Warn(op+" failed: invalid credential shape")
		httputil.RespondErrorWithCode(w, ErrInvalidCredentialShape.Error(), httputil.CodeInvalidCredentialShape, http.StatusUnprocessableEntity)
	case errors.Is(err, ErrEmailAlreadyRegistered), errors.Is(err, user.ErrDuplicateEmail):
		logger.Warn(op + " failed: email already registered")
		httputil.RespondErrorWithCode(w, ErrEmailAlreadyRegistered.Error(), httputil.CodeEmailAlreadyRegistered, http.StatusConflict)
	case errors.Is(err, ErrInvalidCredentials):
		logger.Warn(op + " failed: invalid credentials")
		httputil.RespondUnauthorized(w, ErrInvalidCredentials.Error(), httputil.CodeInvalidCredentials)
	case errors.Is(err, ErrUnauthorized):
		logger.Warn(op+" failed: unauthorized", "error", err.Error())
		httputil.RespondUnauthorized(w, ErrUnauthorized.Error(), httputil.CodeUnauthorized)
	default:
		logger.Error(op+" failed", "error", err.Error())
		httputil.RespondInternalError(w)
	}
}
