package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"os/exec"
	"runtime"
	"strings"

	"contact-mail-backend/pkg/validation"
)

// Runner executes the sendmail binary with msg on stdin.
type Runner func(ctx context.Context, path string, args []string, msg []byte) error

// ExecRunner runs the real binary.
func ExecRunner(ctx context.Context, path string, args []string, msg []byte) error {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(msg)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if detail := strings.TrimSpace(string(out)); detail != "" {
			return fmt.Errorf("%s: %w: %s", path, err, detail)
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

var mailerID = "contact-mail-backend/" + runtime.Version()

// SendmailRelay is the fallback transport: the host's local sendmail
// program, unauthenticated.
type SendmailRelay struct {
	path string
	run  Runner
}

// NewSendmailRelay creates the relay. A nil runner means ExecRunner.
func NewSendmailRelay(path string, run Runner) *SendmailRelay {
	if run == nil {
		run = ExecRunner
	}
	return &SendmailRelay{path: path, run: run}
}

func (r *SendmailRelay) Name() string { return NameSendmail }

func (r *SendmailRelay) Available() bool {
	return r.path != ""
}

// Open has nothing to dial; every Send spawns its own process.
func (r *SendmailRelay) Open(_ context.Context) (Session, Result) {
	if !r.Available() {
		return nil, Fail(ReasonUnavailable, errors.New("sendmail path not configured"))
	}
	return r, Ok()
}

// Send tries once with -f <envelope sender> (when the sender is a valid
// address) and, whatever the first failure was, once more without it.
func (r *SendmailRelay) Send(ctx context.Context, msg *Message) Result {
	if len(msg.To) == 0 {
		return Fail(ReasonInvalid, errors.New("no recipients"))
	}
	raw := BuildRawMessage(msg)
	base := []string{"-t", "-i"}

	first := base
	if sender := EnvelopeSenderArg(msg.EnvelopeSender); sender != "" {
		first = append(append([]string{}, base...), "-f", sender)
	}
	err := r.run(ctx, r.path, first, raw)
	if err == nil {
		return Ok()
	}
	if retryErr := r.run(ctx, r.path, base, raw); retryErr != nil {
		return Fail(ReasonRejected, errors.Join(err, retryErr))
	}
	return Ok()
}

func (r *SendmailRelay) Close() error { return nil }

// EnvelopeSenderArg returns the sanitized -f value, or "" when addr is not a
// valid address.
func EnvelopeSenderArg(addr string) string {
	if addr == "" || !validation.IsEmail(addr) {
		return ""
	}
	return validation.SanitizeEnvelopeSender(addr)
}

// BuildRawMessage renders headers and HTML body for sendmail -t.
// Cc and Bcc are only written when non-empty.
func BuildRawMessage(msg *Message) []byte {
	var b bytes.Buffer
	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}

	header("To", joinAddresses(msg.To))
	header("Subject", mime.QEncoding.Encode("UTF-8", msg.Subject))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/html; charset=UTF-8")
	header("X-Mailer", mailerID)
	header("From", msg.From.String())
	if msg.ReplyTo.Email != "" {
		header("Reply-To", msg.ReplyTo.String())
	}
	if len(msg.Cc) > 0 {
		header("Cc", joinAddresses(msg.Cc))
	}
	if len(msg.Bcc) > 0 {
		header("Bcc", joinAddresses(msg.Bcc))
	}
	b.WriteString("\r\n")
	b.WriteString(msg.HTMLBody)
	return b.Bytes()
}
