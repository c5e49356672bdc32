// Package server initializes and runs the newsdesk extension server. It
// wires the Postgres repositories, the sign-off and profile services, the
// background mailer and the HTTP endpoint, and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/meridianpress/newsdesk/internal/logging"
	"github.com/meridianpress/newsdesk/internal/server/assets"
	"github.com/meridianpress/newsdesk/internal/server/auth"
	"github.com/meridianpress/newsdesk/internal/server/config"
	"github.com/meridianpress/newsdesk/internal/server/crossref"
	"github.com/meridianpress/newsdesk/internal/server/httpapi"
	"github.com/meridianpress/newsdesk/internal/server/mailer"
	"github.com/meridianpress/newsdesk/internal/server/notify"
	"github.com/meridianpress/newsdesk/internal/server/profiles"
	"github.com/meridianpress/newsdesk/internal/server/shared/db"
	"github.com/meridianpress/newsdesk/internal/server/signoff"
	"github.com/meridianpress/newsdesk/internal/server/vocab"
)

type App struct {
	config *config.Config
	logger logging.Logger
	mailer *mailer.SMTPMailer
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	m, err := db.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	v, err := vocab.Load(cfg.VocabPath)
	if err != nil {
		return nil, fmt.Errorf("vocabulary load error: %w", err)
	}

	issuer := auth.NewIssuer(cfg.TokenIssuer, []byte(cfg.SecretKey), cfg.SignOffExpiration)

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser,
		cfg.SMTPPassword, cfg.EmailSender, logger)
	notifier := notify.NewWebhookNotifier(cfg.WebhookEndpoints, cfg.WebhookSecret, logger)

	profileSvc := profiles.NewService(m.Profiles(), v, cfg.ContentAPIURL, cfg.AuthorURIDomain, logger)
	publisher := signoff.NewPublisher(m.Archive(), m.Archive(), notifier, logger)
	signoffSvc := signoff.NewService(m.Archive(), m.Users(), profileSvc, publisher,
		smtpMailer, issuer, cfg, logger)
	formatter := crossref.NewFormatter(m.Users(), m.Archive(), v, cfg, logger)

	httpServer := httpapi.NewServer(cfg.EndpointAddrHTTP, profileSvc, signoffSvc,
		formatter, assets.NewS3Store(cfg), issuer, logger)

	return &App{config: cfg, logger: logger, mailer: smtpMailer, server: httpServer}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	app.mailer.Run(ctx)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()
	app.mailer.Wait()
}
