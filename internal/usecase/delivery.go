package usecase

import (
	"context"
	"fmt"
	"strings"

	"contact-mail-backend/config"
	"contact-mail-backend/internal/domain"
	"contact-mail-backend/pkg/email"
)

const defaultSender = "no-reply@localhost"

// DeliveryPipeline sends the admin email and, when enabled, the customer
// confirmation. Transports are tried in order; the first one that delivers
// the admin email also carries the confirmation, over the same session.
type DeliveryPipeline struct {
	cfg        config.MailConfig
	transports []email.Transport
	log        domain.RequestLogger
}

// NewDeliveryPipeline expects the transports in priority order (primary first).
func NewDeliveryPipeline(cfg config.MailConfig, log domain.RequestLogger, transports ...email.Transport) *DeliveryPipeline {
	return &DeliveryPipeline{cfg: cfg, transports: transports, log: log}
}

// Deliver never returns an error: transport failures are logged and turned
// into the outcome flags.
func (p *DeliveryPipeline) Deliver(ctx context.Context, rid, adminHTML, confirmHTML string, input domain.SubmissionInput) domain.DeliveryOutcome {
	out := domain.DeliveryOutcome{
		ConfirmEnabled: p.cfg.ConfirmEnabled,
		CorrelationID:  rid,
	}
	for _, t := range p.transports {
		name := t.Name()
		if !t.Available() {
			p.log.Log(rid, name+": not available, skipped")
			continue
		}

		p.log.Log(rid, fmt.Sprintf("%s admin: sending to [%s]", name, strings.Join(p.cfg.To, ", ")))
		sess, res := t.Open(ctx)
		if !res.Sent {
			p.log.Log(rid, fmt.Sprintf("%s admin: FAIL -> %s", name, res.Cause()))
			continue
		}

		res = sess.Send(ctx, p.adminMessage(name, input, adminHTML))
		if !res.Sent {
			p.log.Log(rid, fmt.Sprintf("%s admin: FAIL -> %s", name, res.Cause()))
			p.closeSession(rid, name, sess)
			continue
		}
		out.AdminSent = true
		out.Transport = name
		p.log.Log(rid, name+" admin: OK")

		if p.cfg.ConfirmEnabled {
			p.log.Log(rid, fmt.Sprintf("%s confirmation: sending to [%s]", name, input.Email))
			res = sess.Send(ctx, p.confirmationMessage(name, input, confirmHTML))
			out.ConfirmSent = res.Sent
			if res.Sent {
				p.log.Log(rid, name+" confirmation: OK")
			} else {
				p.log.Log(rid, fmt.Sprintf("%s confirmation: FAIL -> %s", name, res.Cause()))
			}
		}
		p.closeSession(rid, name, sess)
		break
	}

	if !out.AdminSent {
		p.log.Log(rid, "admin email not delivered by any transport")
	}
	return out
}

func (p *DeliveryPipeline) closeSession(rid, name string, sess email.Session) {
	if err := sess.Close(); err != nil {
		p.log.Log(rid, fmt.Sprintf("%s: close failed -> %v", name, err))
	}
}

// headerSender is the site address used in From and Reply-To headers.
// SMTP_USER only stands in for MAIL_FROM on the relay that authenticates as it.
func (p *DeliveryPipeline) headerSender(transport string) string {
	if transport == email.NameSMTP {
		return firstNonEmpty(p.cfg.MailFrom, p.cfg.SMTPUser, defaultSender)
	}
	return firstNonEmpty(p.cfg.MailFrom, defaultSender)
}

func (p *DeliveryPipeline) adminMessage(transport string, input domain.SubmissionInput, html string) *email.Message {
	return &email.Message{
		From:           email.Address{Name: p.cfg.SiteName, Email: p.headerSender(transport)},
		ReplyTo:        email.Address{Name: input.Name, Email: input.Email},
		To:             email.Addresses(p.cfg.To),
		Cc:             email.Addresses(p.cfg.Cc),
		Bcc:            email.Addresses(p.cfg.Bcc),
		Subject:        p.cfg.Subject,
		HTMLBody:       html,
		EnvelopeSender: firstNonEmpty(p.cfg.MailFrom, p.cfg.SMTPUser),
	}
}

func (p *DeliveryPipeline) confirmationMessage(transport string, input domain.SubmissionInput, html string) *email.Message {
	return &email.Message{
		From: email.Address{
			Name:  firstNonEmpty(p.cfg.ConfirmFromName, p.cfg.SiteName),
			Email: firstNonEmpty(p.cfg.ConfirmFrom, p.headerSender(transport)),
		},
		ReplyTo:        email.Address{Name: p.cfg.SiteName, Email: p.headerSender(transport)},
		To:             []email.Address{{Name: input.Name, Email: input.Email}},
		Subject:        p.cfg.ConfirmSubject,
		HTMLBody:       html,
		EnvelopeSender: firstNonEmpty(p.cfg.ConfirmFrom, p.cfg.MailFrom, p.cfg.SMTPUser),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
