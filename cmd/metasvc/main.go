package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rglek0/Metadata-Editor/internal/infra/config"
	"github.com/rglek0/Metadata-Editor/internal/infra/logging"
	http_ "github.com/rglek0/Metadata-Editor/internal/infra/transport/http"
	"github.com/rglek0/Metadata-Editor/internal/repo/session"
	"github.com/rglek0/Metadata-Editor/internal/repo/upload"
	"github.com/rglek0/Metadata-Editor/internal/repo/user"
	"github.com/rglek0/Metadata-Editor/internal/svc/authsvc"
	"github.com/rglek0/Metadata-Editor/internal/svc/metasvc"
	"github.com/rglek0/Metadata-Editor/internal/svc/metasvc/tagengine"
	"github.com/rglek0/Metadata-Editor/internal/svc/uploadsvc"
)

const (
	appName = "metasvc"
	svcName = "server"
)

type Config struct {
	config.EnvConfig

	Log        logging.LoggerConfig                  `envPrefix:"LOG_"`
	Auth       authsvc.AuthConfig                    `envPrefix:"AUTH_"`
	AuthHTTP   authsvc.HTTPTransportConfig           `envPrefix:"AUTH_HTTP_"`
	Upload     uploadsvc.UploadConfig                `envPrefix:"UPLOAD_"`
	UploadHTTP uploadsvc.HTTPTransportConfig         `envPrefix:"UPLOAD_HTTP_"`
	Engine     tagengine.ExiftoolEngineConfig        `envPrefix:"ENGINE_"`
	User       user.SQLiteUserRepositoryConfig       `envPrefix:"USER_"`
	Session    session.SQLiteSessionRepositoryConfig `envPrefix:"SESSION_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	defer func() {
		log := logging.GetLogger("cmd.metasvc")

		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
			panic(err)
		}

		log.InfoContext(ctx, "shutdown")
	}()

	authSvc, err := authsvc.NewAuthService(
		user.SQLiteUserRepositoryFactory(cfg.User),
		session.SQLiteSessionRepositoryFactory(cfg.Session),
		cfg.Auth,
	)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}
	defer authSvc.Close()

	metaSvc := metasvc.NewEngineMetaService(tagengine.NewExiftoolEngine(cfg.Engine))

	uploadSvc, err := uploadsvc.NewStorageUploadService(
		ctx,
		upload.FileSystemUploadRepositoryFactory(),
		metaSvc,
		cfg.Upload,
	)
	if err != nil {
		return fmt.Errorf("new upload service: %w", err)
	}

	throttle := authsvc.NewLoginThrottle(authsvc.LoginThrottleConfig{
		WindowDuration: cfg.Auth.LoginWindow,
		MaxAttempts:    cfg.Auth.LoginMaxAttempts,
		SkipSuccessful: cfg.Auth.LoginSkipSuccessful,
	})

	authTransport := authsvc.NewHTTPTransport(authSvc, throttle, cfg.AuthHTTP)
	uploadTransport := uploadsvc.NewHTTPTransport(uploadSvc, authSvc, cfg.UploadHTTP)

	mux := http.NewServeMux()
	mux.Handle("/auth/", authTransport)
	mux.Handle("/upload", uploadTransport)
	mux.Handle("/metadata", uploadTransport)
	mux.Handle("/filename", uploadTransport)

	if err := http_.ListenAndServe(ctx, mux, cfg.AuthHTTP.HTTPTransportConfig); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
