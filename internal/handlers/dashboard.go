package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"campusvault/internal/models"
)

// TransactionItem represents a transaction in a rendered list.
type TransactionItem struct {
	models.Transaction
	DateLabel string
	IsIncome  bool
}

// DashboardViewModel is the data passed to the dashboard template.
type DashboardViewModel struct {
	User         *models.User
	Transactions []TransactionItem
	Income       float64
	Expenses     float64
	Balance      float64
	Flash        *Flash
}

// Dashboard renders the monthly summary for the signed-in user.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	now := time.Now()
	transactions, err := h.db.ListTransactionsByMonth(user.ID, now.Year(), now.Month())
	if err != nil {
		slog.Error("failed to list monthly transactions", "user_id", user.ID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	income, expenses := sumByType(transactions)

	h.render(w, r, "index.html", DashboardViewModel{
		User:         user,
		Transactions: transactionItems(transactions),
		Income:       income,
		Expenses:     expenses,
		Balance:      income - expenses,
		Flash:        h.popFlash(w, r),
	})
}

func sumByType(transactions []models.Transaction) (income, expenses float64) {
	for _, t := range transactions {
		switch t.Type {
		case models.TypeIncome:
			income += t.Amount
		case models.TypeExpense:
			expenses += t.Amount
		}
	}
	return income, expenses
}

func transactionItems(transactions []models.Transaction) []TransactionItem {
	items := make([]TransactionItem, 0, len(transactions))
	for _, t := range transactions {
		items = append(items, TransactionItem{
			Transaction: t,
			DateLabel:   t.Date.Format("Jan 02, 2006"),
			IsIncome:    t.Type == models.TypeIncome,
		})
	}
	return items
}
