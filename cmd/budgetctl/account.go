package main

import (
	"errors"
	"fmt"

	"budget-tracker/internal/finance"
	"budget-tracker/internal/models"
	"budget-tracker/internal/seed"

	"github.com/spf13/cobra"
)

func initCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the demo dataset into an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wrote := c.app.Seeded
			if !wrote {
				wrote = seed.NewLoader(c.app.Store, c.now, c.rand, c.app.Logger).Initialize()
				if wrote {
					c.app.Budgeting.Reload()
				}
			}
			if wrote {
				c.printf("Seed data written to %s\n", c.app.Config.DBPath)
			} else {
				c.printf("Store already initialized\n")
			}
			return nil
		},
	}
}

func registerCmd(c *cli) *cobra.Command {
	var in models.RegisterInput
	var confirm string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if in.Password == "" {
				if in.Password, err = c.promptPassword("Password: "); err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				if confirm, err = c.promptPassword("Confirm password: "); err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
			} else if confirm == "" {
				confirm = in.Password
			}

			if err := finance.ValidateRegistration(in, confirm); err != nil {
				return err
			}

			u, err := c.app.Auth.Register(in)
			if err != nil {
				return err
			}
			c.printf("Registered %s (%s). Log in with: budgetctl login --email %s\n", u.Name, u.ID, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "E-mail address")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password (prompted if omitted)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "Password confirmation (defaults to --password)")
	return cmd
}

func loginCmd(c *cli) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in; the session persists until logout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("missing required flag: email")
			}
			if password == "" {
				var err error
				if password, err = c.promptPassword("Password: "); err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
			}

			sess, err := c.app.Auth.Login(email, password)
			if err != nil {
				return err
			}
			c.printf("%s, %s!\n", finance.GetGreeting(c.now()), sess.User.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "E-mail address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if omitted)")
	return cmd
}

func logoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.app.Auth.Logout()
			c.printf("Logged out\n")
			return nil
		},
	}
}

func whoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.session()
			if err != nil {
				return err
			}
			u := sess.User
			c.printf("%s <%s>\n", u.Name, u.Email)
			c.printf("ID:             %s\n", u.ID)
			c.printf("Role:           %s\n", u.Role)
			c.printf("Monthly income: %s\n", finance.FormatCurrency(u.MonthlyIncome))
			c.printf("Member since:   %s\n", finance.FormatDate(u.CreatedAt))
			if u.Bio != "" {
				c.printf("Bio:            %s\n", u.Bio)
			}
			return nil
		},
	}
}

func profileCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Edit or delete your account",
	}
	cmd.AddCommand(profileUpdateCmd(c), profileDeleteCmd(c))
	return cmd
}

func profileUpdateCmd(c *cli) *cobra.Command {
	var name, email, password, avatar, bio string
	var income float64

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields; only the given flags are changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.session()
			if err != nil {
				return err
			}

			var patch models.ProfilePatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("email") {
				if !finance.IsValidEmail(email) {
					return finance.FieldErrors{"email": "Please enter a valid email"}
				}
				patch.Email = &email
			}
			if flags.Changed("password") {
				if len(password) < finance.MinPasswordLength {
					return finance.FieldErrors{"password": "Password must be at least 6 characters"}
				}
				patch.Password = &password
			}
			if flags.Changed("income") {
				if income < 0 {
					return finance.FieldErrors{"monthlyIncome": "Income cannot be negative"}
				}
				patch.MonthlyIncome = &income
			}
			if flags.Changed("avatar") {
				patch.Avatar = &avatar
			}
			if flags.Changed("bio") {
				patch.Bio = &bio
			}

			u, err := c.app.Auth.UpdateProfile(sess, patch)
			if err != nil {
				return err
			}
			c.printf("Profile updated for %s\n", u.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "E-mail address")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	cmd.Flags().Float64Var(&income, "income", 0, "Monthly income")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar initials")
	cmd.Flags().StringVar(&bio, "bio", "", "Short bio")
	return cmd
}

func profileDeleteCmd(c *cli) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete your account and all your expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete the account without --yes")
			}
			sess, err := c.session()
			if err != nil {
				return err
			}
			if err := c.app.Auth.DeleteAccount(sess); err != nil {
				return err
			}
			c.printf("Account deleted\n")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
