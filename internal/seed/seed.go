// Package seed writes the baseline dataset into an empty store.
package seed

import (
	"fmt"
	"log/slog"
	"time"

	"budget-tracker/internal/finance"
	"budget-tracker/internal/models"
	"budget-tracker/internal/storage"
)

// Loader populates a store on first run.
type Loader struct {
	store  *storage.Store
	now    func() time.Time
	rand   finance.Rand
	logger *slog.Logger
}

// NewLoader creates a loader. Nil now, rand or logger fall back to the
// wall clock, the global generator and slog.Default().
func NewLoader(store *storage.Store, now func() time.Time, rand finance.Rand, logger *slog.Logger) *Loader {
	if now == nil {
		now = time.Now
	}
	if rand == nil {
		rand = finance.DefaultRand()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: store, now: now, rand: rand, logger: logger.With(slog.String("component", "seed"))}
}

// Initialize writes the fixture when, and only when, no users collection
// exists. It reports whether anything was written. The five collections are
// written one by one; a failure part way leaves a mixed state.
func (l *Loader) Initialize() bool {
	if l.store.Has(storage.KeyUsers) {
		return false
	}

	users := Users()
	expenses := Expenses(l.now(), l.rand)
	committees := Committees()
	messages := Messages()
	winners := Winners()

	l.store.Set(storage.KeyUsers, users)
	l.store.Set(storage.KeyExpenses, expenses)
	l.store.Set(storage.KeyCommittees, committees)
	l.store.Set(storage.KeyMessages, messages)
	l.store.Set(storage.KeyWinners, winners)

	l.logger.Info("Seed data initialized",
		slog.Int("users", len(users)),
		slog.Int("expenses", len(expenses)),
		slog.Int("committees", len(committees)),
		slog.Int("messages", len(messages)),
		slog.Int("winners", len(winners)))
	return true
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func at(year int, month time.Month, d, hour, minute int) time.Time {
	return time.Date(year, month, d, hour, minute, 0, 0, time.Local)
}

// Users returns the seeded accounts: five regular users and one admin.
func Users() []models.User {
	regular := func(id, name, email string, income float64, followers, following int, created time.Time, avatar, bio string) models.User {
		return models.User{
			ID: id, Name: name, Email: email, Password: "password123", Role: models.RoleUser,
			MonthlyIncome: income, Followers: followers, Following: following,
			CreatedAt: created, Avatar: avatar, Bio: bio,
		}
	}

	return []models.User{
		regular("user1", "John Doe", "john@example.com", 5000, 145, 89, day(2024, 1, 15), "JD",
			"Financial enthusiast saving for a dream vacation"),
		regular("user2", "Jane Smith", "jane@example.com", 6500, 234, 156, day(2024, 2, 10), "JS",
			"Budget master and savings champion"),
		regular("user3", "Mike Johnson", "mike@example.com", 4800, 98, 67, day(2024, 3, 5), "MJ",
			"Investing in my future, one dollar at a time"),
		regular("user4", "Sarah Williams", "sarah@example.com", 5500, 187, 123, day(2024, 4, 20), "SW",
			"Frugal living advocate and committee organizer"),
		regular("user5", "David Chen", "david@example.com", 7200, 312, 201, day(2024, 5, 12), "DC",
			"Tech professional with a passion for smart budgeting"),
		{
			ID: "admin1", Name: "Admin User", Email: "admin@example.com", Password: "admin123",
			Role: models.RoleAdmin, CreatedAt: day(2024, 1, 1), Avatar: "AD", Bio: "Platform administrator",
		},
	}
}

type expenseTemplate struct {
	title    string
	category string
	min, max int
}

var templates = []expenseTemplate{
	{"Grocery Shopping", "Groceries", 80, 200},
	{"Restaurant Dinner", "Food & Dining", 30, 100},
	{"Coffee Shop", "Food & Dining", 5, 15},
	{"Gas Station", "Transportation", 40, 80},
	{"Uber/Lyft Ride", "Transportation", 15, 45},
	{"Electricity Bill", "Bills & Utilities", 70, 150},
	{"Internet Bill", "Bills & Utilities", 50, 100},
	{"Phone Bill", "Bills & Utilities", 40, 80},
	{"Netflix Subscription", "Subscriptions", 10, 20},
	{"Spotify Premium", "Subscriptions", 10, 15},
	{"Gym Membership", "Fitness & Sports", 30, 80},
	{"Movie Tickets", "Entertainment", 20, 50},
	{"Online Shopping", "Shopping", 30, 150},
	{"Clothing Purchase", "Shopping", 50, 200},
	{"Doctor Visit", "Healthcare", 50, 150},
	{"Pharmacy", "Healthcare", 20, 60},
	{"Haircut", "Personal Care", 20, 50},
	{"Book Purchase", "Education", 15, 40},
	{"Home Supplies", "Home & Garden", 25, 100},
}

const (
	currentMonthExpenses = 25
	pastMonths           = 5
	pastMonthExpenses    = 15
)

// Expenses generates user1's history: 25 expenses in the month of now and
// 15 in each of the five months before it, on days 1-28.
func Expenses(now time.Time, r finance.Rand) []models.Expense {
	now = now.In(time.Local)
	year, month := now.Year(), now.Month()

	expenses := make([]models.Expense, 0, currentMonthExpenses+pastMonths*pastMonthExpenses)
	add := func(offset int) {
		t := templates[r.IntN(len(templates))]
		d := r.IntN(28) + 1
		amount := r.IntN(t.max-t.min+1) + t.min
		expenses = append(expenses, models.Expense{
			ID:          fmt.Sprintf("exp%d", len(expenses)+1),
			UserID:      "user1",
			Title:       t.title,
			Amount:      float64(amount),
			Category:    t.category,
			Date:        time.Date(year, month-time.Month(offset), d, 0, 0, 0, 0, time.Local),
			Description: t.title + " - " + t.category,
		})
	}

	for range currentMonthExpenses {
		add(0)
	}
	for offset := 1; offset <= pastMonths; offset++ {
		for range pastMonthExpenses {
			add(offset)
		}
	}
	return expenses
}

// Committees returns the seeded committees, all active.
func Committees() []models.Committee {
	c := func(id, name, desc string, typ models.CommitteeType, goal, current float64, members []string, by string, created, next time.Time) models.Committee {
		return models.Committee{
			ID: id, Name: name, Description: desc, Type: typ,
			GoalAmount: goal, CurrentAmount: current, Members: members,
			CreatedBy: by, CreatedAt: created, Status: models.CommitteeActive, NextDrawDate: &next,
		}
	}

	return []models.Committee{
		c("comm1", "Monthly Savers Club 💰",
			"Save together, win together! Join our monthly savings challenge and build wealth as a community.",
			models.CommitteeMonthly, 1000, 850, []string{"user1", "user2", "user3", "user4", "user5"},
			"user1", day(2024, 12, 1), day(2025, 2, 1)),
		c("comm2", "Weekly Budget Warriors ⚔️",
			"Weekly savings challenge for the disciplined. Small steps, big results!",
			models.CommitteeWeekly, 500, 425, []string{"user1", "user3", "user4"},
			"user3", day(2024, 12, 15), day(2025, 1, 20)),
		c("comm3", "Dream Vacation Fund ✈️",
			"Saving for that dream vacation? Join us and make it happen faster!",
			models.CommitteeMonthly, 2000, 1650, []string{"user2", "user4", "user5"},
			"user2", day(2024, 11, 20), day(2025, 1, 25)),
		c("comm4", "Emergency Fund Builders 🛡️",
			"Building financial security together. 6 months of expenses, here we come!",
			models.CommitteeMonthly, 1500, 1200, []string{"user1", "user2", "user5"},
			"user5", day(2024, 10, 10), day(2025, 2, 10)),
		c("comm5", "Tech Gadget Savers 📱",
			"Saving for the latest tech? Pool resources and win big!",
			models.CommitteeWeekly, 800, 640, []string{"user3", "user5"},
			"user3", day(2024, 12, 5), day(2025, 1, 18)),
	}
}

// Messages returns the seeded committee chat.
func Messages() []models.Message {
	m := func(id, committee, user, name, text string, ts time.Time) models.Message {
		return models.Message{ID: id, CommitteeID: committee, UserID: user, UserName: name, Message: text, Timestamp: ts}
	}

	return []models.Message{
		m("msg1", "comm1", "user1", "John Doe", "Hey everyone! Excited to be part of this committee! 🎉", at(2024, 12, 2, 10, 30)),
		m("msg2", "comm1", "user2", "Jane Smith", "Welcome! Let's save together and reach our goals! 💪", at(2024, 12, 2, 11, 15)),
		m("msg3", "comm1", "user3", "Mike Johnson", "Just made my monthly deposit. Good luck everyone!", at(2024, 12, 5, 14, 20)),
		m("msg4", "comm1", "user4", "Sarah Williams", "This is such a great idea! Already seeing results 📈", at(2024, 12, 8, 9, 45)),
		m("msg5", "comm1", "user5", "David Chen", "Love the community spirit here! Keep it up everyone! 🌟", at(2024, 12, 12, 16, 30)),
		m("msg6", "comm1", "user1", "John Doe", "We're almost at our goal! Just $150 more to go! 🎯", at(2024, 12, 20, 13, 10)),
		m("msg7", "comm2", "user3", "Mike Johnson", "Welcome to the Weekly Budget Warriors! Let's do this! ⚔️", at(2024, 12, 15, 10, 0)),
		m("msg8", "comm2", "user1", "John Doe", "Thanks for creating this! Weekly challenges keep me motivated 💯", at(2024, 12, 16, 14, 30)),
		m("msg9", "comm2", "user4", "Sarah Williams", "Just completed my first week! Feeling accomplished 🏆", at(2024, 12, 22, 11, 20)),
	}
}

// Winners returns the seeded draw history.
func Winners() []models.Winner {
	w := func(id, committee, committeeName, user, userName string, amount float64, date time.Time) models.Winner {
		return models.Winner{
			ID: id, CommitteeID: committee, CommitteeName: committeeName,
			UserID: user, UserName: userName, Amount: amount, Date: date,
		}
	}

	return []models.Winner{
		w("win1", "comm1", "Monthly Savers Club 💰", "user2", "Jane Smith", 1000, day(2024, 11, 1)),
		w("win2", "comm2", "Weekly Budget Warriors ⚔️", "user3", "Mike Johnson", 500, day(2024, 12, 8)),
		w("win3", "comm1", "Monthly Savers Club 💰", "user1", "John Doe", 1000, day(2024, 10, 1)),
		w("win4", "comm3", "Dream Vacation Fund ✈️", "user4", "Sarah Williams", 2000, day(2024, 12, 1)),
		w("win5", "comm4", "Emergency Fund Builders 🛡️", "user5", "David Chen", 1500, day(2024, 11, 10)),
		w("win6", "comm2", "Weekly Budget Warriors ⚔️", "user1", "John Doe", 500, day(2024, 12, 1)),
		w("win7", "comm5", "Tech Gadget Savers 📱", "user3", "Mike Johnson", 800, day(2024, 12, 15)),
		w("win8", "comm3", "Dream Vacation Fund ✈️", "user2", "Jane Smith", 2000, day(2024, 11, 1)),
	}
}
