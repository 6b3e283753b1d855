package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/rglek0/Metadata-Editor/internal/infra/config"
	"github.com/rglek0/Metadata-Editor/internal/infra/logging"
	"github.com/rglek0/Metadata-Editor/internal/repo/session"
	"github.com/rglek0/Metadata-Editor/internal/repo/user"
	"github.com/rglek0/Metadata-Editor/internal/svc/authsvc"
)

const (
	appName = "metasvc"
	svcName = "createuser"

	// Accounts provisioned from the command line default to admin.
	defaultRole = "admin"
)

var errUsage = errors.New("usage: createuser [username] [password] [role]")

type Config struct {
	config.EnvConfig

	Log     logging.LoggerConfig                  `envPrefix:"LOG_"`
	Auth    authsvc.AuthConfig                    `envPrefix:"AUTH_"`
	User    user.SQLiteUserRepositoryConfig       `envPrefix:"USER_"`
	Session session.SQLiteSessionRepositoryConfig `envPrefix:"SESSION_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, args []string) error {
	username, password, role, err := gatherInput(args)
	if err != nil {
		return err
	}

	authSvc, err := authsvc.NewAuthService(
		user.SQLiteUserRepositoryFactory(cfg.User),
		session.SQLiteSessionRepositoryFactory(cfg.Session),
		cfg.Auth,
	)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}
	defer authSvc.Close()

	created, err := authSvc.CreateUser(ctx, username, password, role)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Printf("created user %q (id %d, role %s, created %s)\n",
		created.Username,
		created.ID,
		created.Role,
		time.Unix(created.CreatedAt, 0).UTC().Format(time.RFC3339),
	)

	return nil
}

// gatherInput takes username, password and role from the positional
// arguments, prompting interactively for whatever is missing. The password
// prompt does not echo.
func gatherInput(args []string) (username, password, role string, err error) {
	if len(args) > 3 {
		return "", "", "", errUsage
	}

	if len(args) > 0 {
		username = args[0]
	} else {
		fmt.Print("username: ")

		if _, err := fmt.Scanln(&username); err != nil {
			return "", "", "", fmt.Errorf("read username: %w", err)
		}
	}

	if len(args) > 1 {
		password = args[1]
	} else {
		fmt.Print("password: ")

		buf, err := term.ReadPassword(int(os.Stdin.Fd()))

		fmt.Println()

		if err != nil {
			return "", "", "", fmt.Errorf("read password: %w", err)
		}

		password = string(buf)
	}

	role = defaultRole
	if len(args) > 2 {
		role = args[2]
	}

	return username, password, role, nil
}
