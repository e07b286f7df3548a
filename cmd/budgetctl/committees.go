package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"budget-tracker/internal/auth"
	"budget-tracker/internal/budgeting"
	"budget-tracker/internal/finance"
	"budget-tracker/internal/models"

	"github.com/spf13/cobra"
)

func committeeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "committee",
		Aliases: []string{"committees"},
		Short:   "Savings committees and winner draws",
	}
	cmd.AddCommand(
		committeeCreateCmd(c),
		committeeListCmd(c),
		committeeJoinCmd(c),
		committeeMineCmd(c),
		committeeUpdateCmd(c),
		committeeDeleteCmd(c),
		committeeMembersCmd(c),
		committeeDrawCmd(c),
	)
	return cmd
}

func (c *cli) printCommittees(committees []models.Committee) error {
	if len(committees) == 0 {
		c.printf("No committees\n")
		return nil
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSTATUS\tMEMBERS\tSAVED\tGOAL\tPROGRESS")
	for _, cm := range committees {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%.1f%%\n",
			cm.ID, cm.Name, cm.Type, cm.Status, len(cm.Members),
			finance.FormatCurrency(cm.CurrentAmount), finance.FormatCurrency(cm.GoalAmount),
			finance.CalculatePercentage(cm.CurrentAmount, cm.GoalAmount))
	}
	return tw.Flush()
}

// managedCommittee returns the committee when the session user created it or is an admin.
func (c *cli) managedCommittee(sess *auth.Session, id string) (models.Committee, error) {
	cm, ok := c.app.Budgeting.Committee(id)
	if !ok {
		return models.Committee{}, budgeting.ErrCommitteeNotFound
	}
	if cm.CreatedBy != sess.UserID() && !sess.IsAdmin() {
		return models.Committee{}, errors.New("only the creator or an admin can change this committee")
	}
	return cm, nil
}

func committeeCreateCmd(c *cli) *cobra.Command {
	var in models.CommitteeInput
	var typ, nextDraw string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a committee; it stays pending until an admin approves it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.session()
			if err != nil {
				return err
			}
			in.Type = models.CommitteeType(strings.ToLower(typ))
			if nextDraw != "" {
				d, err := finance.ParseInputDate(nextDraw)
				if err != nil {
					return finance.FieldErrors{"nextDrawDate": "Date must be YYYY-MM-DD"}
				}
				in.NextDrawDate = &d
			}
			if err := finance.ValidateCommitteeInput(in); err != nil {
				return err
			}

			cm, err := c.app.Budgeting.CreateCommittee(sess, in)
			if err != nil {
				return err
			}
			c.printf("Created committee %s (%s), pending approval\n", cm.Name, cm.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Committee name")
	cmd.Flags().StringVar(&in.Description, "description", "", "What the committee saves for")
	cmd.Flags().StringVar(&typ, "type", string(models.CommitteeMonthly), "weekly, monthly or yearly")
	cmd.Flags().Float64Var(&in.GoalAmount, "goal", 0, "Goal amount paid to the winner")
	cmd.Flags().StringVar(&nextDraw, "next-draw", "", "Next draw date as YYYY-MM-DD")
	return cmd
}

func committeeListCmd(c *cli) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all committees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			committees := c.app.Budgeting.Committees()
			if status != "" {
				filtered := committees[:0]
				for _, cm := range committees {
					if string(cm.Status) == status {
						filtered = append(filtered, cm)
					}
				}
				committees = filtered
			}
			return c.printCommittees(committees)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only pending, active or completed committees")
	return cmd
}

func committeeMineCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List the committees you belong to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.session()
			if err != nil {
				return err
			}
			return c.printCommittees(c.app.Budgeting.GetUserCommittees(sess))
		},
	}
}

func committeeJoinCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "join <id>",
		Short: "Join a committee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.session()
			if err != nil {
				return err
			}
			cm, ok := c.app.Budgeting.Committee(args[0])
			if !ok {
				return budgeting.ErrCommitteeNotFound
			}
			if cm.HasMember(sess.UserID()) {
				c.printf("Already a member of %s\n", cm.Name)
				return nil
			}
			if err := c.app.Budgeting.JoinCommittee(sess, args[0]); err != nil {
				return err
			}
			c.printf("Joined %s\n", cm.Name)
			return nil
		},
	}
}

func committeeUpdateCmd(c *cli) *cobra.Command {
	var name, description, typ, status, nextDraw string
	var goal, current float64

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change committee fields; only the given flags are changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.session()
			if err != nil {
				return err
			}
			if _, err := c.managedCommittee(sess, args[0]); err != nil {
				return err
			}

			var patch models.CommitteePatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("type") {
				t := models.CommitteeType(typ)
				if !t.Valid() {
					return finance.FieldErrors{"type": "Type must be weekly, monthly or yearly"}
				}
				patch.Type = &t
			}
			if flags.Changed("goal") {
				if goal <= 0 {
					return finance.FieldErrors{"goalAmount": "Goal amount must be greater than 0"}
				}
				patch.GoalAmount = &goal
			}
			if flags.Changed("current") {
				patch.CurrentAmount = &current
			}
			if flags.Changed("status") {
				s := models.CommitteeStatus(status)
				if !s.Valid() {
					return fmt.Errorf("unknown status %q", status)
				}
				patch.Status = &s
			}
			if flags.Changed("next-draw") {
				d, err := finance.ParseInputDate(nextDraw)
				if err != nil {
					return finance.FieldErrors{"nextDrawDate": "Date must be YYYY-MM-DD"}
				}
				patch.NextDrawDate = &d
			}

			c.app.Budgeting.UpdateCommittee(args[0], patch)
			c.printf("Updated %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&typ, "type", "", "weekly, monthly or yearly")
	cmd.Flags().Float64Var(&goal, "goal", 0, "Goal amount")
	cmd.Flags().Float64Var(&current, "current", 0, "Amount saved so far")
	cmd.Flags().StringVar(&status, "status", "", "pending, active or completed")
	cmd.Flags().StringVar(&nextDraw, "next-draw", "", "Next draw date as YYYY-MM-DD")
	return cmd
}

func committeeDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a committee you created",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.session()
			if err != nil {
				return err
			}
			cm, err := c.managedCommittee(sess, args[0])
			if err != nil {
				return err
			}
			c.app.Budgeting.DeleteCommittee(args[0])
			c.printf("Deleted %s\n", cm.Name)
			return nil
		},
	}
}

func committeeMembersCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "members <id>",
		Short: "List a committee's members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, ok := c.app.Budgeting.Committee(args[0])
			if !ok {
				return budgeting.ErrCommitteeNotFound
			}

			for _, u := range c.app.Budgeting.CommitteeMembers(args[0]) {
				marker := ""
				if u.ID == cm.CreatedBy {
					marker = " (creator)"
				}
				c.printf("%s  %s%s\n", u.ID, u.Name, marker)
			}
			return nil
		},
	}
}

func committeeDrawCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "draw <id>",
		Short: "Draw the winner of an active committee and mark it completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.session()
			if err != nil {
				return err
			}
			if err := c.app.Budgeting.RequireMember(sess, args[0]); err != nil {
				return err
			}
			cm, ok := c.app.Budgeting.Committee(args[0])
			if !ok {
				return budgeting.ErrCommitteeNotFound
			}
			if cm.Status != models.CommitteeActive {
				return fmt.Errorf("committee %s is %s, only active committees can draw", cm.Name, cm.Status)
			}

			w, ok := c.app.Budgeting.DrawWinner(args[0])
			if !ok {
				return errors.New("no eligible members to draw from")
			}
			// Second step of the draw; an interruption here leaves the committee active.
			c.app.Budgeting.UpdateCommittee(args[0], models.StatusPatch(models.CommitteeCompleted))

			c.printf("🎉 %s wins %s from %s!\n", w.UserName, finance.FormatCurrency(w.Amount), w.CommitteeName)
			return nil
		},
	}
}

func chatCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Committee chat",
	}
	cmd.AddCommand(chatSendCmd(c), chatListCmd(c), chatDeleteCmd(c))
	return cmd
}

func chatSendCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "send <committee-id> <message>...",
		Short: "Post a message to a committee you belong to",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.session()
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")
			if err := finance.ValidateMessage(text); err != nil {
				return err
			}
			if err := c.app.Budgeting.RequireMember(sess, args[0]); err != nil {
				return err
			}

			msg, err := c.app.Budgeting.SendMessage(sess, args[0], text)
			if err != nil {
				return err
			}
			c.printf("Sent (%s)\n", msg.ID)
			return nil
		},
	}
}

func chatListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list <committee-id>",
		Short: "Show a committee's chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.session()
			if err != nil {
				return err
			}
			if !sess.IsAdmin() {
				if err := c.app.Budgeting.RequireMember(sess, args[0]); err != nil {
					return err
				}
			}

			msgs := c.app.Budgeting.GetCommitteeMessages(args[0])
			if len(msgs) == 0 {
				c.printf("No messages yet\n")
				return nil
			}
			for _, m := range msgs {
				c.printf("[%s %s] %s: %s\n", finance.FormatDate(m.Timestamp), m.Timestamp.Format("15:04"), m.UserName, m.Message)
			}
			return nil
		},
	}
}

func chatDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <message-id>",
		Short: "Remove a chat message (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.adminSession(); err != nil {
				return err
			}
			if !c.app.Budgeting.DeleteMessage(args[0]) {
				return fmt.Errorf("message %s not found", args[0])
			}
			c.printf("Deleted message %s\n", args[0])
			return nil
		},
	}
}

func leaderboardCmd(c *cli) *cobra.Command {
	var committeeID, sortBy string
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Winners and their payouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := finance.SortKey(sortBy)
			switch key {
			case finance.SortByDate, finance.SortByAmount, finance.SortByFrequency:
			default:
				return fmt.Errorf("unknown sort %q, want date, amount or frequency", sortBy)
			}

			winners := finance.FilterWinnersByCommittee(c.app.Budgeting.Winners(), committeeID)
			if len(winners) == 0 {
				c.printf("No winners yet\n")
				return nil
			}

			stats := finance.SortWinnerStats(finance.WinnerStats(winners), key)
			tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tNAME\tWINS\tTOTAL\tLAST WIN")
			for i, s := range stats {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
					i+1, s.UserName, s.TotalWins, finance.FormatCurrency(s.TotalAmount), finance.FormatDate(s.LastWin))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			recent := finance.SortWinners(winners, key)
			if limit > 0 && len(recent) > limit {
				recent = recent[:limit]
			}
			c.printf("\nRecent draws\n")
			for _, w := range recent {
				c.printf("%s  %s won %s in %s\n", finance.FormatDate(w.Date), w.UserName, finance.FormatCurrency(w.Amount), w.CommitteeName)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&committeeID, "committee", "", "Only this committee")
	cmd.Flags().StringVar(&sortBy, "sort", string(finance.SortByDate), "date, amount or frequency")
	cmd.Flags().IntVar(&limit, "limit", 10, "Recent draws to show (0 for all)")
	return cmd
}
