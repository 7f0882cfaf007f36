package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"campusvault/internal/models"
)

// HistoryViewModel is the data passed to the monthly history template.
type HistoryViewModel struct {
	User           *models.User
	Year           int
	Month          int
	MonthName      string
	Transactions   []TransactionItem
	Income         float64
	Expenses       float64
	Balance        float64
	PrevYear       int
	PrevMonth      int
	NextYear       int
	NextMonth      int
	IsCurrentMonth bool
}

// History renders the summary for an arbitrary month, with prev/next
// navigation. Defaults to the current month.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	now := time.Now()
	year := now.Year()
	month := int(now.Month())

	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		if y, err := strconv.Atoi(yearStr); err == nil {
			year = y
		}
	}
	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		if m, err := strconv.Atoi(monthStr); err == nil && m >= 1 && m <= 12 {
			month = m
		}
	}

	transactions, err := h.db.ListTransactionsByMonth(user.ID, year, time.Month(month))
	if err != nil {
		slog.Error("failed to list transactions for history", "user_id", user.ID, "year", year, "month", month, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	income, expenses := sumByType(transactions)

	prevDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	nextDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	h.render(w, r, "history.html", HistoryViewModel{
		User:           user,
		Year:           year,
		Month:          month,
		MonthName:      time.Month(month).String(),
		Transactions:   transactionItems(transactions),
		Income:         income,
		Expenses:       expenses,
		Balance:        income - expenses,
		PrevYear:       prevDate.Year(),
		PrevMonth:      int(prevDate.Month()),
		NextYear:       nextDate.Year(),
		NextMonth:      int(nextDate.Month()),
		IsCurrentMonth: year == now.Year() && month == int(now.Month()),
	})
}
