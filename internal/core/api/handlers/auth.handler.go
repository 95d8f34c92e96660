package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/enjoys-in/airsend-webmail/internal/core/api/repository"
	"github.com/enjoys-in/airsend-webmail/internal/interfaces"
)

const SessionCookie = "session"

type contextKey struct{}

type AuthHandler struct {
	service interfaces.AuthService
}

// NewAuthHandler creates a new instance of the AuthHandler with the given
// AuthService implementation.
func NewAuthHandler(service interfaces.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register creates an account from a JSON body and answers 201 with the
// new user.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req interfaces.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// UserLogin logs in a user based on their email address and password,
// given either as form values or as a JSON body. On success the session
// token is returned and also set as a cookie.
func (h *AuthHandler) UserLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")
	} else if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	w.WriteHeader(http.StatusNoContent)
}

// RequireSession rejects requests without a valid session and makes the
// logged in user available to next through CurrentUser.
func (h *AuthHandler) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.service.Authenticate(r.Context(), sessionToken(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, user)))
	}
}

// CurrentUser returns the user stored by RequireSession.
func CurrentUser(ctx context.Context) *repository.User {
	u, _ := ctx.Value(contextKey{}).(*repository.User)
	return u
}

// sessionToken reads a bearer token, falling back to the session cookie.
func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
