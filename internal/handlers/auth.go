package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"campusvault/internal/auth"
	"campusvault/internal/models"
	"campusvault/internal/storage"
)

// AuthViewModel holds data for the login and register pages.
type AuthViewModel struct {
	Error string
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	// If already logged in, go straight to the dashboard
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if _, err := h.db.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
	}
	h.render(w, r, "login.html", AuthViewModel{})
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "login.html", AuthViewModel{Error: "Invalid form submission"})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		h.render(w, r, "login.html", AuthViewModel{Error: "Username and password are required"})
		return
	}

	// Generic failure message: never reveal whether the username exists
	user, err := h.db.GetUserByUsername(username)
	if err != nil || !auth.CheckPassword(password, user.PasswordHash) {
		h.render(w, r, "login.html", AuthViewModel{Error: "Invalid username or password"})
		return
	}

	if err := h.startSession(w, user); err != nil {
		slog.Error("failed to start session", "username", username, "error", err)
		h.render(w, r, "login.html", AuthViewModel{Error: "An error occurred. Please try again."})
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// RegisterForm renders the registration page.
func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", AuthViewModel{})
}

// Register handles the registration form submission. A new account gets the
// default budget and is signed in immediately.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "register.html", AuthViewModel{Error: "Invalid form submission"})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		h.render(w, r, "register.html", AuthViewModel{Error: "Username and password are required"})
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		h.render(w, r, "register.html", AuthViewModel{Error: "An error occurred. Please try again."})
		return
	}

	user, err := h.db.CreateUser(username, hash)
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			h.render(w, r, "register.html", AuthViewModel{Error: "Username already exists"})
			return
		}
		slog.Error("failed to create user", "username", username, "error", err)
		h.render(w, r, "register.html", AuthViewModel{Error: "An error occurred. Please try again."})
		return
	}

	if err := h.startSession(w, user); err != nil {
		slog.Error("failed to start session", "username", username, "error", err)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout handles user logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.db.DeleteSession(cookie.Value); err != nil {
			slog.Warn("failed to delete session", "error", err)
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handlers) startSession(w http.ResponseWriter, user *models.User) error {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(SessionDuration)
	if err := h.db.CreateSession(token, user.ID, expiresAt); err != nil {
		return err
	}

	h.setSessionCookie(w, token)
	return nil
}
