package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"budget-tracker/internal/app"
	"budget-tracker/internal/auth"
	"budget-tracker/internal/config"
	"budget-tracker/internal/finance"
	"budget-tracker/internal/logging"
	"budget-tracker/internal/models"

	"github.com/joho/godotenv"
	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	name := fs.String("name", "", "Full name")
	email := fs.String("email", "", "E-mail address used to log in")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	admin := fs.Bool("admin", false, "Create an admin account")
	income := fs.Float64("income", 0, "Monthly income")
	dbPath := fs.String("db", config.DefaultDBPath, "Path to database file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" || *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -name <name> -email <email> [-password <password>] [-admin] [-income <amount>] [-db <db_path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: name, email")
	}
	if !finance.IsValidEmail(*email) {
		return fmt.Errorf("invalid email: %s", *email)
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout) // Print newline after password input
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if len(password) < finance.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", finance.MinPasswordLength)
	}

	if err := loadDotEnv(); err != nil {
		return err
	}
	cfg := config.DefaultConfig()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}

	// Allow overriding db path via env var if not explicitly set via flag (flag default is used)
	if path := os.Getenv("DB_PATH"); path != "" && *dbPath == config.DefaultDBPath {
		*dbPath = path
	}

	cfg.DBPath = *dbPath

	// Seed before registering; the fixture is only written while no users exist.
	a, err := app.New(cfg, app.Options{Logger: logging.NewWithWriter(stderr, "warn", cfg.Production())})
	if err != nil {
		return err
	}
	defer a.Close()
	if a.Seeded {
		fmt.Fprintf(stdout, "Seed data written to %s\n", cfg.DBPath)
	}

	role := models.RoleUser
	if *admin {
		role = models.RoleAdmin
	}

	user, err := a.Auth.Register(models.RegisterInput{
		Name:          *name,
		Email:         *email,
		Password:      password,
		Role:          role,
		MonthlyIncome: *income,
	})
	if errors.Is(err, auth.ErrDuplicateEmail) {
		return fmt.Errorf("user %s already exists", *email)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	a.Logger.Debug("User added", slog.String("user_id", user.ID))
	fmt.Fprintf(stdout, "User %s created successfully with ID %s (role %s)\n", user.Email, user.ID, user.Role)
	return nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Check if stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
