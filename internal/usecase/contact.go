package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"contact-mail-backend/config"
	"contact-mail-backend/internal/domain"
	"contact-mail-backend/pkg/email"
)

type contactUsecase struct {
	cfg      config.MailConfig
	renderer *email.Renderer
	pipeline *DeliveryPipeline
	log      domain.RequestLogger
	loc      *time.Location
}

// NewContactUsecase creates a new contact usecase
func NewContactUsecase(cfg config.MailConfig, renderer *email.Renderer, pipeline *DeliveryPipeline, log domain.RequestLogger, loc *time.Location) domain.ContactUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &contactUsecase{
		cfg:      cfg,
		renderer: renderer,
		pipeline: pipeline,
		log:      log,
		loc:      loc,
	}
}

// Submit validates the submission, renders both bodies and hands them to
// the delivery pipeline. Stages run strictly in that order.
func (uc *contactUsecase) Submit(ctx context.Context, rid string, input domain.SubmissionInput, meta domain.RequestMeta) (domain.DeliveryOutcome, error) {
	outcome := domain.DeliveryOutcome{ConfirmEnabled: uc.cfg.ConfirmEnabled, CorrelationID: rid}

	result := Validate(input, uc.cfg)
	if !result.Valid {
		uc.log.Log(rid, "Validation FAIL: "+strings.Join(result.Errors, " | "))
		return outcome, &domain.ValidationError{Result: result}
	}

	data := uc.templateData(input, meta)
	data.Subject = uc.cfg.Subject
	adminHTML, err := uc.renderer.Render(email.KindAdmin, data)
	if err != nil {
		uc.log.Log(rid, "Render admin email: FAIL -> "+err.Error())
		return outcome, fmt.Errorf("render admin email: %w", err)
	}

	var confirmHTML string
	if uc.cfg.ConfirmEnabled {
		data.Subject = uc.cfg.ConfirmSubject
		if confirmHTML, err = uc.renderer.Render(email.KindConfirmation, data); err != nil {
			uc.log.Log(rid, "Render confirmation email: FAIL -> "+err.Error())
			return outcome, fmt.Errorf("render confirmation email: %w", err)
		}
	}

	// a client hanging up must not abort a send that is already under way
	outcome = uc.pipeline.Deliver(context.WithoutCancel(ctx), rid, adminHTML, confirmHTML, input)
	if !outcome.AdminSent {
		return outcome, domain.ErrDeliveryFailed
	}
	return outcome, nil
}

func (uc *contactUsecase) templateData(input domain.SubmissionInput, meta domain.RequestMeta) email.TemplateData {
	ts := meta.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return email.TemplateData{
		SiteName:  uc.cfg.SiteName,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Message:   input.Message,
		Timestamp: ts.In(uc.loc).Format("02/01/2006 15:04"),
		IP:        orNotAvailable(meta.IP),
		UserAgent: orNotAvailable(meta.UserAgent),
	}
}

func orNotAvailable(v string) string {
	if v == "" {
		return "n/d"
	}
	return v
}
