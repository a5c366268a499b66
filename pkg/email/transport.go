package email

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
)

// Address is a mailbox with an optional display name.
type Address struct {
	Name  string
	Email string
}

// String formats the address for a header, encoding non-ASCII names.
func (a Address) String() string {
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

// Message is a transport-independent HTML email.
type Message struct {
	From     Address
	ReplyTo  Address
	To       []Address
	Cc       []Address
	Bcc      []Address
	Subject  string
	HTMLBody string
	// EnvelopeSender is the return-path requested from transports that
	// accept one separately from the From header. May be empty.
	EnvelopeSender string
}

// Addresses wraps bare addresses without display names.
func Addresses(list []string) []Address {
	out := make([]Address, 0, len(list))
	for _, a := range list {
		out = append(out, Address{Email: a})
	}
	return out
}

func joinAddresses(list []Address) string {
	parts := make([]string, len(list))
	for i, a := range list {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// FailureReason classifies why a transport step failed.
type FailureReason string

const (
	ReasonNone        FailureReason = ""
	ReasonUnavailable FailureReason = "unavailable"
	ReasonConnect     FailureReason = "connect"
	ReasonRejected    FailureReason = "rejected"
	ReasonInvalid     FailureReason = "invalid"
)

// Result is the outcome of a transport step. Failures are values, not panics.
type Result struct {
	Sent   bool
	Reason FailureReason
	Err    error
}

// Ok reports a successful step.
func Ok() Result {
	return Result{Sent: true}
}

// Fail builds a failed Result.
func Fail(reason FailureReason, err error) Result {
	return Result{Reason: reason, Err: err}
}

// Cause renders the failure for the request log.
func (r Result) Cause() string {
	if r.Sent {
		return "ok"
	}
	if r.Err == nil {
		return string(r.Reason)
	}
	return fmt.Sprintf("%s: %v", r.Reason, r.Err)
}

// Names reported by the built-in relays.
const (
	NameSMTP     = "smtp"
	NameSendmail = "sendmail"
)

// Transport is one way of getting mail out of the process. Implementations
// can be swapped between the SMTP relay, sendmail and test doubles.
type Transport interface {
	Name() string
	// Available reports whether the transport is configured at all. An
	// unavailable transport is skipped, it is not an error.
	Available() bool
	// Open prepares a session that may carry several messages in order.
	Open(ctx context.Context) (Session, Result)
}

// Session sends messages over an opened transport.
type Session interface {
	Send(ctx context.Context, msg *Message) Result
	Close() error
}
