package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// SubmissionInput represents a contact form submission after normalization
type SubmissionInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// ContentKind tells the normalizer how the request body was encoded
type ContentKind int

const (
	ContentJSON ContentKind = iota
	ContentForm
)

// ValidationResult collects every rule violation, in rule order
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Message joins the errors for display.
func (r ValidationResult) Message() string {
	return strings.Join(r.Errors, " ")
}

// RequestMeta is shown to the site owner in the admin email
type RequestMeta struct {
	IP        string
	UserAgent string
	Timestamp time.Time
}

// DeliveryOutcome is produced once per request by the delivery pipeline.
// ConfirmSent is only meaningful when ConfirmEnabled and AdminSent are both true.
type DeliveryOutcome struct {
	AdminSent      bool
	ConfirmSent    bool
	ConfirmEnabled bool
	CorrelationID  string
	Transport      string // name of the transport that delivered the admin email
}

// ValidationError is returned by Submit when the input (or the recipient
// configuration) does not pass validation.
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	return e.Result.Message()
}

// ErrDeliveryFailed means no transport delivered the admin email.
var ErrDeliveryFailed = errors.New("admin email could not be delivered")

// RequestLogger appends request-scoped lines to the mail log
type RequestLogger interface {
	Log(rid, message string)
}

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// Submit validates, renders and delivers one submission
	Submit(ctx context.Context, rid string, input SubmissionInput, meta RequestMeta) (DeliveryOutcome, error)
}
