// Package finance holds the pure helpers used by the managers and the
// presentation layer: formatting, ids, validation, aggregation and tips.
package finance

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// FormatCurrency renders amount as US dollars, e.g. "$1,234.50" or "-$12.00".
func FormatCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", amount)
}

// FormatDate renders t as a short human-readable local date, e.g. "Dec 1, 2024".
func FormatDate(t time.Time) string {
	return t.In(time.Local).Format("Jan 2, 2006")
}

// FormatDateForInput renders t as YYYY-MM-DD in local time.
func FormatDateForInput(t time.Time) string {
	return t.In(time.Local).Format("2006-01-02")
}

// ParseInputDate parses a YYYY-MM-DD value as local midnight.
func ParseInputDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

// GetMonthName returns the English name of month.
func GetMonthName(month time.Month) string {
	return month.String()
}

// GetGreeting returns the greeting for the hour of t.
func GetGreeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good Morning"
	case h < 18:
		return "Good Afternoon"
	default:
		return "Good Evening"
	}
}

// CalculatePercentage returns value/total as a percentage rounded to one
// decimal place, or 0 when total is 0.
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(value/total*1000) / 10
}

// GenerateID returns a practically unique id: a UUIDv7, whose leading bits
// are a millisecond timestamp and the rest random.
func GenerateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail checks the local@domain.tld shape only.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

var offensiveWords = []string{"badword1", "badword2", "offensive"}

// ContainsOffensiveWords reports whether text contains a denylisted word, ignoring case.
func ContainsOffensiveWords(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range offensiveWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
