package cmd

import (
	"fmt"

	"contact-mail-backend/config"
	"contact-mail-backend/internal/domain"
	"contact-mail-backend/internal/usecase"
	"contact-mail-backend/pkg/email"
	"contact-mail-backend/pkg/logger"
)

// app bundles what every command needs to push a submission.
type app struct {
	cfg        *config.Config
	mailLog    *logger.MailLog
	transports []email.Transport
	contactUC  domain.ContactUsecase
	healthUC   usecase.HealthUsecase
}

func newApp(cfg *config.Config) (*app, error) {
	logger.Init(cfg.LogFormat)

	loc := cfg.Location()
	mailLog, err := logger.NewMailLog(cfg.MailLogFile, loc)
	if err != nil {
		// Diagnostics are best effort: keep serving without the file
		logger.Log.Warn("mail log unavailable", "path", cfg.MailLogFile, "error", err)
	}

	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	transports := transportOrder(cfg)
	pipeline := usecase.NewDeliveryPipeline(cfg.Mail, mailLog, transports...)

	return &app{
		cfg:        cfg,
		mailLog:    mailLog,
		transports: transports,
		contactUC:  usecase.NewContactUsecase(cfg.Mail, renderer, pipeline, mailLog, loc),
		healthUC:   usecase.NewHealthUsecase(transports...),
	}, nil
}

// transportOrder lists the relays in the order they are tried.
func transportOrder(cfg *config.Config) []email.Transport {
	return []email.Transport{
		email.NewSMTPRelay(cfg.Mail),
		email.NewSendmailRelay(cfg.Mail.SendmailPath, nil),
	}
}

func (a *app) Close() error {
	return a.mailLog.Close()
}
