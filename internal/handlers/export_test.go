package handlers

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"campusvault/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportTransactions_Empty(t *testing.T) {
	h, db := newTestHandlers(t)
	user := createTestUser(t, db, "alice", "secret")

	req := httptest.NewRequest(http.MethodGet, "/export", http.NoBody)
	req.AddCookie(sessionCookie(t, db, user))
	w := doAuthed(h, h.ExportTransactions, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename="+ExportFilename, w.Header().Get("Content-Disposition"))

	// Header row only
	assert.Equal(t, "Date,Description,Type,Amount (NGN)\n", w.Body.String())
}

func TestExportTransactions_FullHistory(t *testing.T) {
	h, db := newTestHandlers(t)
	user := createTestUser(t, db, "alice", "secret")

	now := time.Now()
	older := now.AddDate(0, -2, 0) // beyond the dashboard's month window

	require.NoError(t, db.CreateTransaction(user.ID, "Old rent", 900, models.TypeExpense, older))
	require.NoError(t, db.CreateTransaction(user.ID, "Salary", 1200.5, models.TypeIncome, now))

	req := httptest.NewRequest(http.MethodGet, "/export", http.NoBody)
	req.AddCookie(sessionCookie(t, db, user))
	w := doAuthed(h, h.ExportTransactions, req)

	require.Equal(t, http.StatusOK, w.Code)

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus both transactions, unfiltered by month")

	assert.Equal(t, []string{"Date", "Description", "Type", "Amount (NGN)"}, records[0])

	// Newest first
	assert.Equal(t, []string{now.Format("2006-01-02"), "Salary", "Income", "1200.50"}, records[1])
	assert.Equal(t, []string{older.Format("2006-01-02"), "Old rent", "Expense", "900.00"}, records[2])
}

func TestExportTransactions_ScopedToUser(t *testing.T) {
	h, db := newTestHandlers(t)
	alice := createTestUser(t, db, "alice", "secret")
	bob := createTestUser(t, db, "bob", "secret")

	require.NoError(t, db.CreateTransaction(bob.ID, "Bob's secret", 50, models.TypeExpense, time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/export", http.NoBody)
	req.AddCookie(sessionCookie(t, db, alice))
	w := doAuthed(h, h.ExportTransactions, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Bob's secret")
}

func TestUpdateSettings_ChangesBudget(t *testing.T) {
	h, db := newTestHandlers(t)
	user := createTestUser(t, db, "alice", "secret")

	form := url.Values{"budget": {"3000.00"}}
	req := postForm("/settings", form)
	req.AddCookie(sessionCookie(t, db, user))
	w := doAuthed(h, h.UpdateSettings, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, "Budget updated to ₦3,000.00", flashMessage(t, w))

	stored, err := db.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3000.00, stored.Budget)
}

func TestUpdateSettings_InvalidBudget(t *testing.T) {
	h, db := newTestHandlers(t)
	user := createTestUser(t, db, "alice", "secret")

	form := url.Values{"budget": {"lots"}}
	req := postForm("/settings", form)
	req.AddCookie(sessionCookie(t, db, user))
	w := doAuthed(h, h.UpdateSettings, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/settings", w.Header().Get("Location"))
	assert.Contains(t, flashMessage(t, w), "Invalid budget")

	// Budget untouched
	stored, err := db.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultBudget, stored.Budget)
}

func TestSettingsForm_ShowsCurrentBudget(t *testing.T) {
	h, db := newTestHandlers(t)
	user := createTestUser(t, db, "alice", "secret")
	require.NoError(t, db.UpdateUserBudget(user.ID, 7500))

	req := httptest.NewRequest(http.MethodGet, "/settings", http.NoBody)
	req.AddCookie(sessionCookie(t, db, user))
	w := doAuthed(h, h.SettingsForm, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "7500.00")
}
