package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rglek0/Metadata-Editor/internal/infra/config"
	"github.com/rglek0/Metadata-Editor/internal/infra/logging"
	"github.com/rglek0/Metadata-Editor/internal/repo/session"
	"github.com/rglek0/Metadata-Editor/internal/repo/user"
	"github.com/rglek0/Metadata-Editor/internal/svc/authsvc"
)

const (
	appName = "metasvc"
	svcName = "updatepassword"
)

var errUsage = errors.New("usage: updatepassword <username> <password>")

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
	if len(args) != 2 {
		return errUsage
	}

	username, password := args[0], args[1]

	authSvc, err := authsvc.NewAuthService(
		user.SQLiteUserRepositoryFactory(cfg.User),
		session.SQLiteSessionRepositoryFactory(cfg.Session),
		cfg.Auth,
	)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}
	defer authSvc.Close()

	if err := authSvc.UpdatePassword(ctx, username, password); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	fmt.Printf("password updated for %q\n", username)

	return nil
}
