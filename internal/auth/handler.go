package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vinyldesk/vinyldesk/internal/platform/httpx"
	"github.com/vinyldesk/vinyldesk/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers the public auth routes for one platform.
func (h *Handler) MountRoutes(r chi.Router, platform Platform) {
	r.Post("/login", h.login(platform))
	r.Post("/register", h.register(platform))
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userPayload struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UserType int    `json:"userType"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      userPayload `json:"user"`
}

func (h *Handler) login(platform Platform) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
			return
		}
		if err := h.validator.Struct(req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}

		result, err := h.service.Authenticate(r.Context(), req.Username, req.Password, platform)
		if err != nil {
			h.respondAuthError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, loginResponse{
			Token:     result.Token,
			ExpiresAt: result.ExpiresAt,
			User: userPayload{
				ID:       result.User.ID,
				Username: result.User.Username,
				Email:    result.User.Email,
				UserType: result.User.UserType,
			},
		})
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) register(platform Platform) http.HandlerFunc {
	userType := UserTypeUser
	if platform == PlatformAdmin {
		userType = UserTypeAdmin
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
			return
		}
		if err := h.validator.Struct(req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}

		user, err := h.service.Register(r.Context(), RegisterInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
			UserType: userType,
		})
		if err != nil {
			if errors.Is(err, shared.ErrDuplicate) {
				httpx.Problem(w, http.StatusConflict, "Duplicate", "username or email already registered")
				return
			}
			h.logger.Error("register user", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, userPayload{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			UserType: user.UserType,
		})
	}
}

func (h *Handler) respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var locked *AccountLockedError
	switch {
	case errors.As(err, &locked):
		httpx.ProblemWithRetry(w, http.StatusTooManyRequests, "Account Locked",
			"too many failed attempts, try again later", locked.Remaining)
	case errors.Is(err, ErrInvalidCredentials):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
	case errors.Is(err, ErrAccountDisabled):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "account disabled")
	case errors.Is(err, ErrPlatformAccessDenied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "account cannot access this platform")
	case shared.IsTransient(err):
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "try again later")
	default:
		h.logger.Error("authenticate", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
