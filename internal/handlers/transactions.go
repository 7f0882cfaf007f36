package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"campusvault/internal/models"
)

// AddTransaction creates a transaction for the signed-in user and queues
// exactly one notice: budget-exceeded for an over-budget expense, an
// acknowledgment for income, or a generic confirmation.
func (h *Handlers) AddTransaction(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	if err := r.ParseForm(); err != nil {
		h.setFlash(w, "error", "Invalid form submission.")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	description := strings.TrimSpace(r.FormValue("description"))
	if description == "" {
		description = "Transaction"
	}

	amount, ok := parseAmount(r.FormValue("amount"))
	if !ok {
		h.setFlash(w, "error", "Invalid amount. Enter a non-negative number.")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	typ := models.TransactionType(r.FormValue("type"))
	if !typ.Valid() {
		h.setFlash(w, "error", "Invalid transaction type.")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := h.db.CreateTransaction(user.ID, description, amount, typ, time.Now()); err != nil {
		slog.Error("failed to create transaction", "user_id", user.ID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// First match wins; the alert never blocks the write
	switch {
	case typ == models.TypeExpense && amount > user.Budget:
		h.setFlash(w, "error", "Alert! You exceeded your budget of "+formatCurrency(user.Budget)+"!")
	case typ == models.TypeIncome:
		h.setFlash(w, "success", "Nice! Income of "+formatCurrency(amount)+" added.")
	default:
		h.setFlash(w, "success", "Transaction added successfully.")
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// DeleteTransaction removes a transaction by id. An unknown id is a 404; a
// transaction owned by someone else is left untouched and the request still
// lands back on the dashboard.
func (h *Handlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	transaction, err := h.db.GetTransaction(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to look up transaction", "id", id, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if transaction.UserID == user.ID {
		if err := h.db.DeleteTransaction(id, user.ID); err != nil {
			slog.Error("failed to delete transaction", "id", id, "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// parseAmount accepts a finite, non-negative decimal.
func parseAmount(raw string) (float64, bool) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, false
	}
	return amount, true
}
