package usecase

import (
	"contact-mail-backend/config"
	"contact-mail-backend/internal/domain"
	"contact-mail-backend/pkg/validation"
)

// Validation messages, in rule order
const (
	MsgNameTooShort     = "Il nome è troppo corto."
	MsgInvalidEmail     = "Email non valida."
	MsgMessageRequired  = "Il messaggio è obbligatorio."
	MsgNoRecipientSetup = "Destinatario non configurato (.env MAIL_TO)."
)

// Validate runs every rule and reports all violations at once. The last
// rule is a configuration precondition surfaced as a validation error.
func Validate(input domain.SubmissionInput, cfg config.MailConfig) domain.ValidationResult {
	var errs []string

	if !validation.MinRunes(input.Name, 2) {
		errs = append(errs, MsgNameTooShort)
	}
	if !validation.IsEmail(input.Email) {
		errs = append(errs, MsgInvalidEmail)
	}
	if !validation.MinRunes(input.Message, 2) {
		errs = append(errs, MsgMessageRequired)
	}
	if len(cfg.To) == 0 {
		errs = append(errs, MsgNoRecipientSetup)
	}

	return domain.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
