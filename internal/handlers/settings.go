package handlers

import (
	"log/slog"
	"net/http"

	"campusvault/internal/models"
)

// SettingsViewModel is the data passed to the settings template.
type SettingsViewModel struct {
	User  *models.User
	Flash *Flash
}

// SettingsForm shows the current budget for editing.
func (h *Handlers) SettingsForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "settings.html", SettingsViewModel{
		User:  GetUserFromContext(r),
		Flash: h.popFlash(w, r),
	})
}

// UpdateSettings overwrites the user's budget threshold.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	if err := r.ParseForm(); err != nil {
		h.setFlash(w, "error", "Invalid form submission.")
		http.Redirect(w, r, "/settings", http.StatusFound)
		return
	}

	budget, ok := parseAmount(r.FormValue("budget"))
	if !ok {
		h.setFlash(w, "error", "Invalid budget. Enter a non-negative number.")
		http.Redirect(w, r, "/settings", http.StatusFound)
		return
	}

	if err := h.db.UpdateUserBudget(user.ID, budget); err != nil {
		slog.Error("failed to update budget", "user_id", user.ID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.setFlash(w, "success", "Budget updated to "+formatCurrency(budget))
	http.Redirect(w, r, "/", http.StatusFound)
}
