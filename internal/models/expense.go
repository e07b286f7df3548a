package models

import "time"

// Expense represents a single spending record owned by one user.
type Expense struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
}

// ExpenseInput holds the caller-supplied fields of a new expense.
// A zero Date means "now".
type ExpenseInput struct {
	Title       string
	Amount      float64
	Category    string
	Date        time.Time
	Description string
}

// ExpensePatch lists the mutable fields of an expense. Nil fields are left unchanged.
type ExpensePatch struct {
	Title       *string
	Amount      *float64
	Category    *string
	Date        *time.Time
	Description *string
}

// Apply merges the patch into e.
func (p ExpensePatch) Apply(e *Expense) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
}

// CategoryOther is used for expenses without a category.
const CategoryOther = "Other"

// Categories is the fixed set of expense categories.
var Categories = []string{
	"Food & Dining",
	"Transportation",
	"Shopping",
	"Entertainment",
	"Bills & Utilities",
	"Healthcare",
	"Education",
	"Travel",
	"Groceries",
	"Fitness & Sports",
	"Personal Care",
	"Insurance",
	"Investments",
	"Gifts & Donations",
	"Home & Garden",
	"Technology",
	"Subscriptions",
	CategoryOther,
}

// IsValidCategory reports whether name is one of Categories.
func IsValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
