package finance

import (
	"fmt"
	"strconv"

	"budget-tracker/internal/models"
)

// Budget tip texts, in the order the rules are evaluated.
const (
	TipLowSavings    = "⚠️ Your savings rate is below 10%. Try to reduce unnecessary expenses."
	TipGreatSavings  = "🎉 Great job! You're saving over 20% of your income."
	TipOverspending  = "🚨 You're spending more than you earn! Review your expenses immediately."
	TipHealthyBudget = "✅ Your budget looks healthy. Keep up the good work!"
)

// CategoryTip is the concentration warning for a category. A zero
// percentage, which only arises without income, is written as "0".
func CategoryTip(category string, percentage float64) string {
	pct := strconv.FormatFloat(percentage, 'f', 1, 64)
	if percentage == 0 {
		pct = "0"
	}
	return fmt.Sprintf("💡 %s is consuming %s%% of your income. Consider optimizing this category.", category, pct)
}

// GenerateBudgetTips returns every tip whose rule fires, in rule order:
// savings rate below 10% or at least 20%, the largest category above 30% of
// income, negative savings. When nothing fires the single healthy-budget tip
// is returned.
//
// Rates are plain float divisions, so without income any spending is
// infinitely concentrated and a nonzero saving is an infinite rate; zero
// savings over zero income is NaN and fires neither rate rule.
func GenerateBudgetTips(income float64, expenses []models.Expense, savings float64) []string {
	var tips []string

	rate := savings / income * 100
	if rate < 10 {
		tips = append(tips, TipLowSavings)
	} else if rate >= 20 {
		tips = append(tips, TipGreatSavings)
	}

	if top, ok := TopCategory(expenses); ok && top.Total/income > 0.3 {
		tips = append(tips, CategoryTip(top.Category, CalculatePercentage(top.Total, income)))
	}

	if savings < 0 {
		tips = append(tips, TipOverspending)
	}

	if len(tips) == 0 {
		return []string{TipHealthyBudget}
	}
	return tips
}
