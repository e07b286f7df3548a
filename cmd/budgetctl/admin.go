package main

import (
	"fmt"
	"text/tabwriter"

	"budget-tracker/internal/budgeting"
	"budget-tracker/internal/finance"
	"budget-tracker/internal/models"

	"github.com/spf13/cobra"
)

func adminCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Moderation for admin accounts",
	}
	cmd.AddCommand(
		adminUsersCmd(c),
		adminBanCmd(c),
		adminDeleteUserCmd(c),
		adminApproveCmd(c),
		adminRejectCmd(c),
		adminStatsCmd(c),
	)
	return cmd
}

func adminUsersCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List every account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.adminSession()
			if err != nil {
				return err
			}
			users, err := c.app.Auth.Users(sess)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tSTATUS\tJOINED")
			for _, u := range users {
				status := u.Status
				if status == "" {
					status = models.UserStatusActive
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, status, finance.FormatDate(u.CreatedAt))
			}
			return tw.Flush()
		},
	}
}

func adminBanCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "ban <user-id>",
		Short: "Ban a user, or lift the ban",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.adminSession()
			if err != nil {
				return err
			}
			u, err := c.app.Auth.ToggleBan(sess, args[0])
			if err != nil {
				return err
			}
			c.printf("%s is now %s\n", u.Name, u.Status)
			return nil
		},
	}
}

func adminDeleteUserCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-user <user-id>",
		Short: "Delete a user and their expenses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.adminSession()
			if err != nil {
				return err
			}
			if err := c.app.Auth.DeleteUser(sess, args[0]); err != nil {
				return err
			}
			c.printf("Deleted user %s\n", args[0])
			return nil
		},
	}
}

func adminApproveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <committee-id>",
		Short: "Activate a pending committee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.adminSession(); err != nil {
				return err
			}
			if !c.app.Budgeting.ApproveCommittee(args[0]) {
				return budgeting.ErrCommitteeNotFound
			}
			c.printf("Approved %s\n", args[0])
			return nil
		},
	}
}

func adminRejectCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <committee-id>",
		Short: "Discard a committee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.adminSession(); err != nil {
				return err
			}
			if !c.app.Budgeting.RejectCommittee(args[0]) {
				return budgeting.ErrCommitteeNotFound
			}
			c.printf("Rejected %s\n", args[0])
			return nil
		},
	}
}

func adminStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Platform overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.adminSession()
			if err != nil {
				return err
			}
			users, err := c.app.Auth.Users(sess)
			if err != nil {
				return err
			}

			stats := finance.ComputeSystemStats(users, c.app.Budgeting.Expenses())
			committees := c.app.Budgeting.Committees()
			pending := 0
			for _, cm := range committees {
				if cm.Status == models.CommitteePending {
					pending++
				}
			}

			c.printf("Users:            %d (%d admin, %d banned)\n", stats.Users, stats.Admins, stats.BannedUsers)
			c.printf("Expenses:         %d totalling %s\n", stats.Expenses, finance.FormatCurrency(stats.TotalExpenses))
			c.printf("Average expense:  %s\n", finance.FormatCurrency(stats.AverageExpense))
			if stats.TopCategory != "" {
				c.printf("Top category:     %s (%s)\n", stats.TopCategory, finance.FormatCurrency(stats.TopCategoryTotal))
			}
			c.printf("Committees:       %d (%d pending)\n", len(committees), pending)
			c.printf("Messages:         %d\n", len(c.app.Budgeting.Messages()))
			c.printf("Winners:          %d\n", len(c.app.Budgeting.Winners()))
			return nil
		},
	}
}
