// Package main provides budgetctl, a command line front end for the budget
// tracker. The login persists in the store between invocations.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"budget-tracker/internal/app"
	"budget-tracker/internal/auth"
	"budget-tracker/internal/config"
	"budget-tracker/internal/finance"
	"budget-tracker/internal/logging"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := execute(newCLI(os.Stdin, os.Stdout, os.Stderr), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries the streams, global flags and the open application of one run.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	dbPath     string

	now  func() time.Time
	rand finance.Rand

	app   *app.App
	lines *bufio.Scanner
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli {
	return &cli{stdin: stdin, stdout: stdout, stderr: stderr, now: time.Now}
}

// execute runs one command line and closes the store whatever the outcome.
func execute(c *cli, args []string) error {
	cmd := rootCmd(c)
	cmd.SetArgs(args)
	defer c.close()
	return cmd.Execute()
}

func rootCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "budgetctl",
		Short:         "Personal budgeting and savings committees",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd)
		},
	}
	cmd.SetIn(c.stdin)
	cmd.SetOut(c.stdout)
	cmd.SetErr(c.stderr)

	cmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&c.dbPath, "db", "", "Path to database file (overrides config and DB_PATH)")

	cmd.AddCommand(
		initCmd(c),
		registerCmd(c),
		loginCmd(c),
		logoutCmd(c),
		whoamiCmd(c),
		profileCmd(c),
		expenseCmd(c),
		committeeCmd(c),
		chatCmd(c),
		leaderboardCmd(c),
		adminCmd(c),
	)
	return cmd
}

func (c *cli) open(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath, nil)
	if err != nil {
		return err
	}
	if c.dbPath != "" {
		cfg.DBPath = c.dbPath
	}

	a, err := app.New(cfg, app.Options{
		Now:    c.now,
		Rand:   c.rand,
		Logger: logging.NewWithWriter(c.stderr, cfg.LogLevel, cfg.Production()),
	})
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

// session returns the logged-in session or ErrNotAuthenticated.
func (c *cli) session() (*auth.Session, error) {
	sess := c.app.Auth.Session()
	if !sess.Active() {
		return nil, auth.ErrNotAuthenticated
	}
	return sess, nil
}

func (c *cli) adminSession() (*auth.Session, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	if !sess.IsAdmin() {
		return nil, auth.ErrForbidden
	}
	return sess, nil
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.stdout, format, args...)
}

// promptPassword reads a password without echo from a terminal, or a line
// from any other reader.
func (c *cli) promptPassword(label string) (string, error) {
	fmt.Fprint(c.stdout, label)
	defer fmt.Fprintln(c.stdout)

	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	if c.lines == nil {
		c.lines = bufio.NewScanner(c.stdin)
	}
	if c.lines.Scan() {
		return c.lines.Text(), nil
	}
	if err := c.lines.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
