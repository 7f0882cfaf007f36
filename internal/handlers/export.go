package handlers

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
)

// ExportFilename is the fixed attachment name for statement downloads.
const ExportFilename = "CampusVault_Statement.csv"

// ExportTransactions streams the user's full transaction history as CSV,
// newest first. An empty history still produces the header row.
func (h *Handlers) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	transactions, err := h.db.ListTransactions(user.ID)
	if err != nil {
		slog.Error("failed to list transactions for export", "user_id", user.ID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+ExportFilename)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Description", "Type", "Amount (NGN)"}); err != nil {
		slog.Error("failed to write csv header", "error", err)
		return
	}

	for _, t := range transactions {
		record := []string{
			t.Date.Format("2006-01-02"),
			t.Description,
			string(t.Type),
			fmt.Sprintf("%.2f", t.Amount),
		}
		if err := cw.Write(record); err != nil {
			slog.Error("failed to write csv record", "transaction_id", t.ID, "error", err)
			return
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("failed to flush csv", "error", err)
	}
}
