package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/xavierca1/pecapital-crm/internal/entity"
	"github.com/xavierca1/pecapital-crm/internal/infra/http/middleware"
	"github.com/xavierca1/pecapital-crm/internal/storage"
)

const sessionTTL = 7 * 24 * time.Hour

type AuthHandler struct {
	Store storage.Storage
}

func NewAuthHandler(store storage.Storage) *AuthHandler {
	return &AuthHandler{Store: store}
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := entity.NewUser(req.Username, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.Store.GetUserByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusConflict, entity.ErrUserAlreadyExists.Error())
		return
	}

	if err := h.Store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, entity.ErrUserAlreadyExists) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.Store.GetUserByUsername(r.Context(), req.Username)
	if err != nil || !user.CheckPassword(req.Password) {
		// Same message either way, no user enumeration.
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	sess := entity.NewSession(user.ID, user.Role, sessionTTL)
	if err := h.Store.CreateSession(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.SID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		h.Store.DeleteSession(r.Context(), cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// HandleMe returns the logged-in user for the frontend session bootstrap.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.Store.GetUser(r.Context(), sess.UserID)
	if err != nil {
		writeUseCaseError(w, err, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
