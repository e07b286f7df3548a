package finance

import (
	"cmp"
	"slices"
	"time"

	"budget-tracker/internal/models"
)

// CategoryTotal is the aggregate of one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

func categoryOf(e models.Expense) string {
	if e.Category == "" {
		return models.CategoryOther
	}
	return e.Category
}

// GroupByCategory buckets expenses by category. Expenses without one go to "Other".
func GroupByCategory(expenses []models.Expense) map[string][]models.Expense {
	groups := make(map[string][]models.Expense)
	for _, e := range expenses {
		c := categoryOf(e)
		groups[c] = append(groups[c], e)
	}
	return groups
}

// GetCategoryTotals sums expenses per category, in order of first occurrence.
func GetCategoryTotals(expenses []models.Expense) []CategoryTotal {
	index := make(map[string]int)
	var totals []CategoryTotal
	for _, e := range expenses {
		c := categoryOf(e)
		i, ok := index[c]
		if !ok {
			i = len(totals)
			index[c] = i
			totals = append(totals, CategoryTotal{Category: c})
		}
		totals[i].Total += e.Amount
		totals[i].Count++
	}
	return totals
}

// TopCategory returns the category with the largest total; ties go to the
// one seen first. The bool is false for no expenses.
func TopCategory(expenses []models.Expense) (CategoryTotal, bool) {
	totals := GetCategoryTotals(expenses)
	if len(totals) == 0 {
		return CategoryTotal{}, false
	}
	top := totals[0]
	for _, t := range totals[1:] {
		if t.Total > top.Total {
			top = t
		}
	}
	return top, true
}

// TotalAmount sums the amounts of expenses.
func TotalAmount(expenses []models.Expense) float64 {
	var sum float64
	for _, e := range expenses {
		sum += e.Amount
	}
	return sum
}

// CalculateSavings returns income minus the total of expenses.
func CalculateSavings(income float64, expenses []models.Expense) float64 {
	return income - TotalAmount(expenses)
}

// FilterByDateRange keeps expenses dated within [start, end], both inclusive.
func FilterByDateRange(expenses []models.Expense, start, end time.Time) []models.Expense {
	var out []models.Expense
	for _, e := range expenses {
		if !e.Date.Before(start) && !e.Date.After(end) {
			out = append(out, e)
		}
	}
	return out
}

// ExpensesInMonth keeps expenses dated in the given calendar month of loc.
func ExpensesInMonth(expenses []models.Expense, year int, month time.Month, loc *time.Location) []models.Expense {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return FilterByDateRange(expenses, first, last)
}

// GetCurrentMonthExpenses keeps expenses dated in the local calendar month of now.
func GetCurrentMonthExpenses(expenses []models.Expense, now time.Time) []models.Expense {
	now = now.In(time.Local)
	return ExpensesInMonth(expenses, now.Year(), now.Month(), time.Local)
}

// Summary is the monthly overview shown on the dashboard.
type Summary struct {
	Income      float64         `json:"income"`
	Spent       float64         `json:"spent"`
	Savings     float64         `json:"savings"`
	SavingsRate float64         `json:"savingsRate"`
	Categories  []CategoryTotal `json:"categories"`
	Tips        []string        `json:"tips"`
}

// BudgetSummary computes the current-month overview of a user's expenses.
func BudgetSummary(income float64, expenses []models.Expense, now time.Time) Summary {
	month := GetCurrentMonthExpenses(expenses, now)
	savings := CalculateSavings(income, month)
	return Summary{
		Income:      income,
		Spent:       TotalAmount(month),
		Savings:     savings,
		SavingsRate: CalculatePercentage(savings, income),
		Categories:  GetCategoryTotals(month),
		Tips:        GenerateBudgetTips(income, month, savings),
	}
}

// SystemStats is the admin overview across all users.
type SystemStats struct {
	Users            int     `json:"users"`
	Admins           int     `json:"admins"`
	BannedUsers      int     `json:"bannedUsers"`
	Expenses         int     `json:"expenses"`
	TotalExpenses    float64 `json:"totalExpenses"`
	AverageExpense   float64 `json:"averageExpense"`
	TopCategory      string  `json:"topCategory,omitempty"`
	TopCategoryTotal float64 `json:"topCategoryTotal"`
}

// ComputeSystemStats aggregates all users and expenses.
func ComputeSystemStats(users []models.SessionUser, expenses []models.Expense) SystemStats {
	stats := SystemStats{
		Users:         len(users),
		Expenses:      len(expenses),
		TotalExpenses: TotalAmount(expenses),
	}
	for _, u := range users {
		if u.IsAdmin() {
			stats.Admins++
		}
		if u.Status == models.UserStatusBanned {
			stats.BannedUsers++
		}
	}
	if len(expenses) > 0 {
		stats.AverageExpense = stats.TotalExpenses / float64(len(expenses))
	}
	if top, ok := TopCategory(expenses); ok {
		stats.TopCategory = top.Category
		stats.TopCategoryTotal = top.Total
	}
	return stats
}

// SortKey orders leaderboard listings.
type SortKey string

const (
	SortByDate      SortKey = "date"
	SortByAmount    SortKey = "amount"
	SortByFrequency SortKey = "frequency"
)

// WinnerStat aggregates the wins of one user.
type WinnerStat struct {
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	TotalWins   int       `json:"totalWins"`
	TotalAmount float64   `json:"totalAmount"`
	LastWin     time.Time `json:"lastWin"`
}

// WinnerStats aggregates winners per user, in order of first appearance.
func WinnerStats(winners []models.Winner) []WinnerStat {
	index := make(map[string]int)
	var stats []WinnerStat
	for _, w := range winners {
		i, ok := index[w.UserID]
		if !ok {
			i = len(stats)
			index[w.UserID] = i
			stats = append(stats, WinnerStat{UserID: w.UserID, UserName: w.UserName, LastWin: w.Date})
		}
		stats[i].TotalWins++
		stats[i].TotalAmount += w.Amount
		if w.Date.After(stats[i].LastWin) {
			stats[i].LastWin = w.Date
		}
	}
	return stats
}

// SortWinnerStats returns a copy of stats ordered by key, largest or most
// recent first. Unknown keys order by last win.
func SortWinnerStats(stats []WinnerStat, key SortKey) []WinnerStat {
	out := slices.Clone(stats)
	slices.SortStableFunc(out, func(a, b WinnerStat) int {
		switch key {
		case SortByFrequency:
			return cmp.Compare(b.TotalWins, a.TotalWins)
		case SortByAmount:
			return cmp.Compare(b.TotalAmount, a.TotalAmount)
		default:
			return b.LastWin.Compare(a.LastWin)
		}
	})
	return out
}

// FilterWinnersByCommittee keeps winners of one committee. An empty id keeps all.
func FilterWinnersByCommittee(winners []models.Winner, committeeID string) []models.Winner {
	if committeeID == "" {
		return slices.Clone(winners)
	}
	var out []models.Winner
	for _, w := range winners {
		if w.CommitteeID == committeeID {
			out = append(out, w)
		}
	}
	return out
}

// SortWinners returns a copy of winners ordered by date or amount, newest or
// largest first. SortByFrequency keeps the stored order.
func SortWinners(winners []models.Winner, key SortKey) []models.Winner {
	out := slices.Clone(winners)
	switch key {
	case SortByAmount:
		slices.SortStableFunc(out, func(a, b models.Winner) int { return cmp.Compare(b.Amount, a.Amount) })
	case SortByDate:
		slices.SortStableFunc(out, func(a, b models.Winner) int { return b.Date.Compare(a.Date) })
	}
	return out
}
