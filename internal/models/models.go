package models

import "time"

// TransactionType is the category of a transaction.
type TransactionType string

const (
	// TypeIncome marks money coming in.
	TypeIncome TransactionType = "Income"
	// TypeExpense marks money going out.
	TypeExpense TransactionType = "Expense"
)

// Valid reports whether t is one of the two known categories.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction represents a single income or expense record.
type Transaction struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"type"`
	Date        time.Time       `json:"date"`
	UserID      int64           `json:"user_id"`
}

// User represents a user account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Budget       float64   `json:"budget"`
	CreatedAt    time.Time `json:"created_at"`
}

// DefaultBudget is the budget threshold assigned to new accounts.
const DefaultBudget = 5000.0

// Session represents a user session.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
