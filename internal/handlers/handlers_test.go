package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"campusvault/internal/auth"
	"campusvault/internal/models"
	"campusvault/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTemplateDir = "../../web/templates"

func newTestHandlers(t *testing.T) (*Handlers, *storage.DB) {
	t.Helper()

	db, err := storage.NewDB(":memory:")
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { db.Close() })

	return NewHandlers(db, testTemplateDir, false), db
}

func createTestUser(t *testing.T, db *storage.DB, username, password string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user, err := db.CreateUser(username, hash)
	require.NoError(t, err)
	return user
}

// sessionCookie opens a session for the user and returns the matching cookie.
func sessionCookie(t *testing.T, db *storage.DB, user *models.User) *http.Cookie {
	t.Helper()

	token, err := auth.GenerateSessionToken()
	require.NoError(t, err)
	require.NoError(t, db.CreateSession(token, user.ID, time.Now().Add(SessionDuration)))

	return &http.Cookie{Name: SessionCookieName, Value: token}
}

// doAuthed runs a request through the auth middleware into the given handler.
func doAuthed(h *Handlers, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.AuthMiddleware(handler).ServeHTTP(w, req)
	return w
}

// flashMessage extracts the notice queued by the response, if any.
func flashMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == FlashCookieName && c.Value != "" {
			raw, err := url.QueryUnescape(c.Value)
			require.NoError(t, err)
			_, message, _ := strings.Cut(raw, "|")
			return message
		}
	}
	return ""
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAuthMiddleware_NoSession(t *testing.T) {
	h, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	w := doAuthed(h, h.Dashboard, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	h, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "bogus"})
	w := doAuthed(h, h.Dashboard, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRegister_CreatesUserAndSession(t *testing.T) {
	h, db := newTestHandlers(t)

	form := url.Values{"username": {"newuser"}, "password": {"secret"}}
	w := httptest.NewRecorder()
	h.Register(w, postForm("/register", form))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	user, err := db.GetUserByUsername("newuser")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultBudget, user.Budget)
	assert.True(t, auth.CheckPassword("secret", user.PasswordHash))

	var sessionSet bool
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName && c.Value != "" {
			sessionSet = true
			_, err := db.ValidateSession(c.Value)
			assert.NoError(t, err, "session cookie should be valid")
		}
	}
	assert.True(t, sessionSet, "expected a session cookie")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	h, db := newTestHandlers(t)
	original := createTestUser(t, db, "taken", "firstpass")

	form := url.Values{"username": {"taken"}, "password": {"otherpass"}}
	w := httptest.NewRecorder()
	h.Register(w, postForm("/register", form))

	assert.Equal(t, http.StatusOK, w.Code, "form should be re-shown")
	assert.Contains(t, w.Body.String(), "Username already exists")

	// The original account is unaffected
	user, err := db.GetUserByUsername("taken")
	require.NoError(t, err)
	assert.Equal(t, original.ID, user.ID)
	assert.True(t, auth.CheckPassword("firstpass", user.PasswordHash))
}

func TestLogin_Success(t *testing.T) {
	h, db := newTestHandlers(t)
	createTestUser(t, db, "alice", "correct")

	form := url.Values{"username": {"alice"}, "password": {"correct"}}
	w := httptest.NewRecorder()
	h.Login(w, postForm("/login", form))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestLogin_WrongPassword(t *testing.T) {
	h, db := newTestHandlers(t)
	createTestUser(t, db, "alice", "correct")

	form := url.Values{"username": {"alice"}, "password": {"wrong"}}
	w := httptest.NewRecorder()
	h.Login(w, postForm("/login", form))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")
}

func TestLogin_UnknownUser_SameMessage(t *testing.T) {
	h, _ := newTestHandlers(t)

	form := url.Values{"username": {"ghost"}, "password": {"whatever"}}
	w := httptest.NewRecorder()
	h.Login(w, postForm("/login", form))

	assert.Equal(t, http.StatusOK, w.Code)
	// Same generic message as a wrong password
	assert.Contains(t, w.Body.String(), "Invalid username or password")
}

func TestLogout_EndsSession(t *testing.T) {
	h, db := newTestHandlers(t)
	user := createTestUser(t, db, "alice", "secret")
	cookie := sessionCookie(t, db, user)

	req := httptest.NewRequest(http.MethodGet, "/logout", http.NoBody)
	req.AddCookie(cookie)
	w := doAuthed(h, h.Logout, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	_, err := db.ValidateSession(cookie.Value)
	assert.Error(t, err, "session should be gone after logout")
}
