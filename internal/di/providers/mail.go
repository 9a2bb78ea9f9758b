package providers

import (
	"github.com/samber/do/v2"

	"github.com/scrapapp/scrap-server/internal/config"
	"github.com/scrapapp/scrap-server/internal/logger"
	"github.com/scrapapp/scrap-server/internal/mail"
)

// ProvideMailer provides the SMTP mailer. Without an SMTP host
// configured every send becomes a logged no-op.
func ProvideMailer(i do.Injector) (*mail.Mailer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	mailer, err := mail.NewMailer(mail.Options{
		Host:             cfg.Mail.Host,
		Port:             cfg.Mail.Port,
		Username:         cfg.Mail.Username,
		Password:         cfg.Mail.Password,
		From:             cfg.Mail.From,
		PublicURL:        cfg.Server.PublicURL,
		PasswordTokenTTL: cfg.Auth.PasswordTokenDuration,
		Enabled:          cfg.Mail.Enabled,
		Logger:           log.Logger,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Mail.Enabled {
		log.Info("Mailer initialized", "host", cfg.Mail.Host, "from", cfg.Mail.From)
	} else {
		log.Info("Mailer disabled, emails will be logged")
	}

	return mailer, nil
}
