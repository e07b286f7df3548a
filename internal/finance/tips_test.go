package finance

import (
	"testing"

	"budget-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

func TestGenerateBudgetTipsLowSavingsAndConcentration(t *testing.T) {
	expenses := []models.Expense{expense("Food & Dining", 400), expense("Travel", 550)}

	tips := GenerateBudgetTips(1000, expenses, 50)

	assert.Equal(t, []string{
		TipLowSavings,
		CategoryTip("Travel", 55),
	}, tips)
	assert.Contains(t, tips[1], "Travel is consuming 55.0% of your income")
}

func TestGenerateBudgetTipsLowSavingsWithoutConcentration(t *testing.T) {
	expenses := []models.Expense{expense("A", 250), expense("B", 250), expense("C", 250), expense("D", 200)}

	tips := GenerateBudgetTips(1000, expenses, 50)

	assert.Equal(t, []string{TipLowSavings}, tips)
}

func TestGenerateBudgetTipsGreatSavings(t *testing.T) {
	tips := GenerateBudgetTips(5000, []models.Expense{expense("Food", 100)}, 4900)
	assert.Equal(t, []string{TipGreatSavings}, tips)
}

func TestGenerateBudgetTipsHealthy(t *testing.T) {
	// a 15% savings rate fires neither rate rule
	tips := GenerateBudgetTips(1000, []models.Expense{expense("Food", 850)}, 150)
	assert.Equal(t, []string{CategoryTip("Food", 85)}, tips)

	tips = GenerateBudgetTips(1000, []models.Expense{expense("Food", 150), expense("Rent", 200), expense("Fun", 150), expense("Car", 150), expense("Misc", 200)}, 150)
	assert.Equal(t, []string{TipHealthyBudget}, tips)
}

func TestGenerateBudgetTipsOverspending(t *testing.T) {
	expenses := []models.Expense{expense("Rent", 1500)}

	tips := GenerateBudgetTips(1000, expenses, -500)

	require.Len(t, tips, 3)
	assert.Equal(t, TipLowSavings, tips[0])
	assert.Equal(t, CategoryTip("Rent", 150), tips[1])
	assert.Equal(t, TipOverspending, tips[2])
}

func TestGenerateBudgetTipsWithoutIncome(t *testing.T) {
	assert.Equal(t, []string{
		TipLowSavings,
		"💡 A is consuming 0% of your income. Consider optimizing this category.",
		TipOverspending,
	}, GenerateBudgetTips(0, []models.Expense{expense("A", 10)}, -10))

	assert.Equal(t, []string{TipHealthyBudget}, GenerateBudgetTips(0, nil, 0), "no spending and no income fires nothing")
	assert.Equal(t, []string{TipGreatSavings}, GenerateBudgetTips(0, nil, 5))
}

func TestSelectRandomWinnerEmpty(t *testing.T) {
	_, ok := SelectRandomWinner[string](DefaultRand(), nil)
	assert.False(t, ok)

	_, ok = SelectRandomWinner(DefaultRand(), []string{})
	assert.False(t, ok)
}

func TestSelectRandomWinnerSingle(t *testing.T) {
	for range 100 {
		got, ok := SelectRandomWinner(DefaultRand(), []string{"a"})
		require.True(t, ok)
		assert.Equal(t, "a", got)
	}
}

func TestSelectRandomWinnerUsesInjectedSource(t *testing.T) {
	got, ok := SelectRandomWinner(fixedRand(2), []string{"a", "b", "c"})
	require.True(t, ok)
	assert.Equal(t, "c", got)

	got, _ = SelectRandomWinner(nil, []string{"only"})
	assert.Equal(t, "only", got)
}

func TestSelectRandomWinnerIsUniform(t *testing.T) {
	const trials = 30000
	r := NewSeededRand(42)
	counts := map[string]int{}

	for range trials {
		got, ok := SelectRandomWinner(r, []string{"a", "b", "c"})
		require.True(t, ok)
		counts[got]++
	}

	for _, c := range []string{"a", "b", "c"} {
		assert.InDelta(t, trials/3, counts[c], trials*0.03, "candidate %s chosen %d times", c, counts[c])
	}
}
