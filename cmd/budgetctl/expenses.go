package main

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"budget-tracker/internal/auth"
	"budget-tracker/internal/finance"
	"budget-tracker/internal/models"

	"github.com/spf13/cobra"
)

func expenseCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expense",
		Aliases: []string{"expenses"},
		Short:   "Record and review your expenses",
	}
	cmd.AddCommand(
		expenseAddCmd(c),
		expenseListCmd(c),
		expenseUpdateCmd(c),
		expenseDeleteCmd(c),
		expenseStatsCmd(c),
		expenseTipsCmd(c),
	)
	return cmd
}

// ownExpense finds one of the session user's expenses by id.
func (c *cli) ownExpense(sess *auth.Session, id string) (models.Expense, error) {
	expenses := c.app.Budgeting.GetUserExpenses(sess)
	i := slices.IndexFunc(expenses, func(e models.Expense) bool { return e.ID == id })
	if i < 0 {
		return models.Expense{}, fmt.Errorf("expense %s not found", id)
	}
	return expenses[i], nil
}

// monthExpenses filters to a YYYY-MM month, or the current month when month is empty.
func (c *cli) monthExpenses(expenses []models.Expense, month string) ([]models.Expense, time.Time, error) {
	if month == "" {
		now := c.now()
		return finance.GetCurrentMonthExpenses(expenses, now), now, nil
	}
	t, err := time.ParseInLocation("2006-01", month, time.Local)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("invalid month %q, want YYYY-MM", month)
	}
	return finance.ExpensesInMonth(expenses, t.Year(), t.Month(), time.Local), t, nil
}

func expenseAddCmd(c *cli) *cobra.Command {
	var in models.ExpenseInput
	var date string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.session()
			if err != nil {
				return err
			}
			if date != "" {
				if in.Date, err = finance.ParseInputDate(date); err != nil {
					return finance.FieldErrors{"date": "Date must be YYYY-MM-DD"}
				}
			}
			if err := finance.ValidateExpenseInput(in); err != nil {
				return err
			}

			e, err := c.app.Budgeting.AddExpense(sess, in)
			if err != nil {
				return err
			}
			c.printf("Added %s: %s on %s (%s)\n", e.Title, finance.FormatCurrency(e.Amount), finance.FormatDate(e.Date), e.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "What the money was spent on")
	cmd.Flags().Float64Var(&in.Amount, "amount", 0, "Amount spent")
	cmd.Flags().StringVar(&in.Category, "category", "", "One of: "+strings.Join(models.Categories, ", "))
	cmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD (defaults to now)")
	cmd.Flags().StringVar(&in.Description, "description", "", "Optional note")
	return cmd
}

func expenseListCmd(c *cli) *cobra.Command {
	var month, category string
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your expenses for a month, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.session()
			if err != nil {
				return err
			}

			expenses := c.app.Budgeting.GetUserExpenses(sess)
			if !all {
				if expenses, _, err = c.monthExpenses(expenses, month); err != nil {
					return err
				}
			}
			if category != "" {
				expenses = finance.GroupByCategory(expenses)[category]
			}
			slices.SortStableFunc(expenses, func(a, b models.Expense) int { return b.Date.Compare(a.Date) })

			if len(expenses) == 0 {
				c.printf("No expenses\n")
				return nil
			}

			tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tTITLE\tCATEGORY\tAMOUNT")
			for _, e := range expenses {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					e.ID, finance.FormatDateForInput(e.Date), e.Title, e.Category, finance.FormatCurrency(e.Amount))
			}
			fmt.Fprintf(tw, "\t\t\tTotal\t%s\n", finance.FormatCurrency(finance.TotalAmount(expenses)))
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month as YYYY-MM (defaults to the current month)")
	cmd.Flags().StringVar(&category, "category", "", "Only this category")
	cmd.Flags().BoolVar(&all, "all", false, "List every month")
	return cmd
}

func expenseUpdateCmd(c *cli) *cobra.Command {
	var title, category, date, description string
	var amount float64

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of one of your expenses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.session()
			if err != nil {
				return err
			}
			current, err := c.ownExpense(sess, args[0])
			if err != nil {
				return err
			}

			var patch models.ExpensePatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("amount") {
				patch.Amount = &amount
			}
			if flags.Changed("category") {
				patch.Category = &category
			}
			if flags.Changed("date") {
				d, err := finance.ParseInputDate(date)
				if err != nil {
					return finance.FieldErrors{"date": "Date must be YYYY-MM-DD"}
				}
				patch.Date = &d
			}
			if flags.Changed("description") {
				patch.Description = &description
			}

			patch.Apply(&current)
			if err := finance.ValidateExpenseInput(models.ExpenseInput{
				Title: current.Title, Amount: current.Amount, Category: current.Category,
			}); err != nil {
				return err
			}

			c.app.Budgeting.UpdateExpense(args[0], patch)
			c.printf("Updated %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Amount")
	cmd.Flags().StringVar(&category, "category", "", "Category")
	cmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD")
	cmd.Flags().StringVar(&description, "description", "", "Note")
	return cmd
}

func expenseDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your expenses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.session()
			if err != nil {
				return err
			}
			if _, err := c.ownExpense(sess, args[0]); err != nil {
				return err
			}
			c.app.Budgeting.DeleteExpense(args[0])
			c.printf("Deleted %s\n", args[0])
			return nil
		},
	}
}

func expenseStatsCmd(c *cli) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Spending by category against your income",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.session()
			if err != nil {
				return err
			}

			expenses, at, err := c.monthExpenses(c.app.Budgeting.GetUserExpenses(sess), month)
			if err != nil {
				return err
			}
			income := sess.User.MonthlyIncome
			spent := finance.TotalAmount(expenses)
			savings := finance.CalculateSavings(income, expenses)

			c.printf("%s %d\n", finance.GetMonthName(at.Month()), at.Year())
			c.printf("Income:       %s\n", finance.FormatCurrency(income))
			c.printf("Spent:        %s\n", finance.FormatCurrency(spent))
			c.printf("Savings:      %s (%.1f%%)\n", finance.FormatCurrency(savings), finance.CalculatePercentage(savings, income))

			totals := finance.GetCategoryTotals(expenses)
			if len(totals) == 0 {
				return nil
			}
			slices.SortStableFunc(totals, func(a, b finance.CategoryTotal) int { return cmp.Compare(b.Total, a.Total) })

			c.printf("\n")
			tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tCOUNT\tTOTAL\tSHARE")
			for _, t := range totals {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%.1f%%\n",
					t.Category, t.Count, finance.FormatCurrency(t.Total), finance.CalculatePercentage(t.Total, spent))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month as YYYY-MM (defaults to the current month)")
	return cmd
}

func expenseTipsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tips",
		Short: "Budget advice for the current month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.session()
			if err != nil {
				return err
			}

			summary := finance.BudgetSummary(sess.User.MonthlyIncome, c.app.Budgeting.GetUserExpenses(sess), c.now())
			for _, tip := range summary.Tips {
				c.printf("%s\n", tip)
			}
			return nil
		},
	}
}
