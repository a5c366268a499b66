package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"contact-mail-backend/config"
	"contact-mail-backend/internal/domain"
	"contact-mail-backend/internal/usecase"
	"contact-mail-backend/pkg/email"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Transports
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Name() string    { return m.Called().String(0) }
func (m *MockTransport) Available() bool { return m.Called().Bool(0) }
func (m *MockTransport) Open(ctx context.Context) (email.Session, email.Result) {
	args := m.Called(ctx)
	sess, _ := args.Get(0).(email.Session)
	return sess, args.Get(1).(email.Result)
}

type MockSession struct {
	mock.Mock
}

func (m *MockSession) Send(ctx context.Context, msg *email.Message) email.Result {
	return m.Called(ctx, msg).Get(0).(email.Result)
}
func (m *MockSession) Close() error { return m.Called().Error(0) }

type recordingLog struct {
	lines []string
}

func (r *recordingLog) Log(rid, message string) {
	r.lines = append(r.lines, "["+rid+"] "+message)
}

func (r *recordingLog) contains(sub string) bool {
	for _, l := range r.lines {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

// sendmailRecorder stands in for the sendmail binary
type sendmailRecorder struct {
	fail  func(call int, args []string, msg string) bool
	calls []string
	args  [][]string
}

func (s *sendmailRecorder) run(_ context.Context, _ string, args []string, msg []byte) error {
	s.calls = append(s.calls, string(msg))
	s.args = append(s.args, args)
	if s.fail != nil && s.fail(len(s.calls), args, string(msg)) {
		return errors.New("sendmail exit status 1")
	}
	return nil
}

func mailConfig() config.MailConfig {
	cfg := config.Defaults().Mail
	cfg.To = []string{"admin@x.com"}
	return cfg
}

func mario() domain.SubmissionInput {
	return domain.SubmissionInput{Name: "Mario Rossi", Email: "mario@example.com", Phone: "123", Message: "Ciao"}
}

func isAdmin(msg *email.Message) bool {
	return len(msg.To) > 0 && msg.To[0].Email == "admin@x.com"
}

func isConfirmation(msg *email.Message) bool {
	return len(msg.To) == 1 && msg.To[0].Email == "mario@example.com"
}

func newUsecase(t *testing.T, cfg config.MailConfig, log domain.RequestLogger, transports ...email.Transport) domain.ContactUsecase {
	t.Helper()
	renderer, err := email.NewRenderer()
	require.NoError(t, err)
	pipeline := usecase.NewDeliveryPipeline(cfg, log, transports...)
	return usecase.NewContactUsecase(cfg, renderer, pipeline, log, time.UTC)
}

func TestFallbackOnlyWhenSMTPDisabled(t *testing.T) {
	cfg := mailConfig()
	log := &recordingLog{}
	sendmail := &sendmailRecorder{}

	uc := newUsecase(t, cfg, log, email.NewSMTPRelay(cfg), email.NewSendmailRelay("/usr/sbin/sendmail", sendmail.run))
	out, err := uc.Submit(context.Background(), "abcd1234", mario(), domain.RequestMeta{IP: "10.0.0.1"})

	require.NoError(t, err)
	assert.True(t, out.AdminSent)
	assert.False(t, out.ConfirmEnabled)
	assert.Equal(t, "sendmail", out.Transport)
	assert.Len(t, sendmail.calls, 1)
	assert.Contains(t, sendmail.calls[0], "To: <admin@x.com>")
	assert.True(t, log.contains("[abcd1234] smtp: not available, skipped"))
	assert.True(t, log.contains("[abcd1234] sendmail admin: OK"))
}

func TestFallbackSecondAttemptStillCountsAsSent(t *testing.T) {
	cfg := mailConfig()
	sendmail := &sendmailRecorder{fail: func(call int, _ []string, _ string) bool { return call == 1 }}

	uc := newUsecase(t, cfg, &recordingLog{}, email.NewSMTPRelay(cfg), email.NewSendmailRelay("/usr/sbin/sendmail", sendmail.run))
	out, err := uc.Submit(context.Background(), "abcd1234", mario(), domain.RequestMeta{})

	require.NoError(t, err)
	assert.True(t, out.AdminSent)
	assert.Len(t, sendmail.calls, 2)
}

func TestPrimaryFailureFallsBackForAdminAndConfirmation(t *testing.T) {
	cfg := mailConfig()
	cfg.ConfirmEnabled = true
	log := &recordingLog{}

	sess := new(MockSession)
	sess.On("Send", mock.Anything, mock.MatchedBy(isAdmin)).Return(email.Fail(email.ReasonRejected, errors.New("535 auth failed"))).Once()
	sess.On("Close").Return(nil)

	primary := new(MockTransport)
	primary.On("Name").Return("smtp")
	primary.On("Available").Return(true)
	primary.On("Open", mock.Anything).Return(sess, email.Ok())

	sendmail := &sendmailRecorder{}
	uc := newUsecase(t, cfg, log, primary, email.NewSendmailRelay("/usr/sbin/sendmail", sendmail.run))

	out, err := uc.Submit(context.Background(), "0badf00d", mario(), domain.RequestMeta{})
	require.NoError(t, err)

	assert.True(t, out.AdminSent)
	assert.True(t, out.ConfirmSent)
	assert.Equal(t, "sendmail", out.Transport)
	require.Len(t, sendmail.calls, 2)
	assert.Contains(t, sendmail.calls[0], "To: <admin@x.com>")
	assert.Contains(t, sendmail.calls[1], `To: "Mario Rossi" <mario@example.com>`)

	// the primary never sees the confirmation
	sess.AssertNumberOfCalls(t, "Send", 1)
	sess.AssertNotCalled(t, "Send", mock.Anything, mock.MatchedBy(isConfirmation))
	assert.True(t, log.contains("smtp admin: FAIL -> rejected: 535 auth failed"))
}

func TestPrimaryConnectFailureFallsBack(t *testing.T) {
	cfg := mailConfig()
	primary := new(MockTransport)
	primary.On("Name").Return("smtp")
	primary.On("Available").Return(true)
	primary.On("Open", mock.Anything).Return(nil, email.Fail(email.ReasonConnect, errors.New("connection refused")))

	sendmail := &sendmailRecorder{}
	log := &recordingLog{}
	uc := newUsecase(t, cfg, log, primary, email.NewSendmailRelay("/usr/sbin/sendmail", sendmail.run))

	out, err := uc.Submit(context.Background(), "11112222", mario(), domain.RequestMeta{})
	require.NoError(t, err)
	assert.True(t, out.AdminSent)
	assert.Len(t, sendmail.calls, 1)
	assert.True(t, log.contains("smtp admin: FAIL -> connect: connection refused"))
}

func TestPrimarySuccessReusesSessionForConfirmation(t *testing.T) {
	cfg := mailConfig()
	cfg.ConfirmEnabled = true
	cfg.ConfirmFrom = "hello@sito.it"
	cfg.ConfirmFromName = "Team Sito"

	var confirmation *email.Message
	sess := new(MockSession)
	sess.On("Send", mock.Anything, mock.MatchedBy(isAdmin)).Return(email.Ok()).Once()
	sess.On("Send", mock.Anything, mock.MatchedBy(isConfirmation)).Return(email.Ok()).Once().Run(func(args mock.Arguments) {
		confirmation = args.Get(1).(*email.Message)
	})
	sess.On("Close").Return(nil).Once()

	primary := new(MockTransport)
	primary.On("Name").Return("smtp")
	primary.On("Available").Return(true)
	primary.On("Open", mock.Anything).Return(sess, email.Ok()).Once()

	fallback := new(MockTransport)

	uc := newUsecase(t, cfg, &recordingLog{}, primary, fallback)
	out, err := uc.Submit(context.Background(), "aaaabbbb", mario(), domain.RequestMeta{})
	require.NoError(t, err)

	assert.True(t, out.AdminSent)
	assert.True(t, out.ConfirmSent)
	assert.Equal(t, "smtp", out.Transport)
	sess.AssertExpectations(t)
	primary.AssertExpectations(t)
	fallback.AssertNotCalled(t, "Open", mock.Anything)

	require.NotNil(t, confirmation)
	assert.Equal(t, email.Address{Name: "Team Sito", Email: "hello@sito.it"}, confirmation.From)
	assert.Equal(t, email.Address{Name: "Sito", Email: "no-reply@localhost"}, confirmation.ReplyTo)
	assert.Equal(t, cfg.ConfirmSubject, confirmation.Subject)
	assert.Contains(t, confirmation.HTMLBody, "Ciao Mario Rossi")
}

func TestConfirmationFailureNeverDowngradesAdminSuccess(t *testing.T) {
	cfg := mailConfig()
	cfg.ConfirmEnabled = true

	sess := new(MockSession)
	sess.On("Send", mock.Anything, mock.MatchedBy(isAdmin)).Return(email.Ok())
	sess.On("Send", mock.Anything, mock.MatchedBy(isConfirmation)).Return(email.Fail(email.ReasonRejected, errors.New("550 mailbox unavailable")))
	sess.On("Close").Return(nil)

	primary := new(MockTransport)
	primary.On("Name").Return("smtp")
	primary.On("Available").Return(true)
	primary.On("Open", mock.Anything).Return(sess, email.Ok())

	sendmail := &sendmailRecorder{}
	log := &recordingLog{}
	uc := newUsecase(t, cfg, log, primary, email.NewSendmailRelay("/usr/sbin/sendmail", sendmail.run))

	out, err := uc.Submit(context.Background(), "cafebabe", mario(), domain.RequestMeta{})
	require.NoError(t, err)
	assert.True(t, out.AdminSent)
	assert.False(t, out.ConfirmSent)
	assert.Empty(t, sendmail.calls, "admin email must not be sent twice")
	assert.True(t, log.contains("smtp confirmation: FAIL -> rejected: 550 mailbox unavailable"))
}

func TestFallbackConfirmationFailsBothAttempts(t *testing.T) {
	cfg := mailConfig()
	cfg.ConfirmEnabled = true
	sendmail := &sendmailRecorder{fail: func(_ int, _ []string, msg string) bool {
		return strings.Contains(msg, "mario@example.com>\r\nSubject")
	}}

	uc := newUsecase(t, cfg, &recordingLog{}, email.NewSMTPRelay(cfg), email.NewSendmailRelay("/usr/sbin/sendmail", sendmail.run))
	out, err := uc.Submit(context.Background(), "cafebabe", mario(), domain.RequestMeta{})

	require.NoError(t, err)
	assert.True(t, out.AdminSent)
	assert.False(t, out.ConfirmSent)
	assert.Len(t, sendmail.calls, 3, "one admin attempt, two confirmation attempts")
}

func TestTotalDeliveryFailure(t *testing.T) {
	cfg := mailConfig()
	cfg.ConfirmEnabled = true
	sendmail := &sendmailRecorder{fail: func(int, []string, string) bool { return true }}
	log := &recordingLog{}

	uc := newUsecase(t, cfg, log, email.NewSMTPRelay(cfg), email.NewSendmailRelay("/usr/sbin/sendmail", sendmail.run))
	out, err := uc.Submit(context.Background(), "deadbeef", mario(), domain.RequestMeta{})

	assert.ErrorIs(t, err, domain.ErrDeliveryFailed)
	assert.False(t, out.AdminSent)
	assert.False(t, out.ConfirmSent)
	assert.Equal(t, "deadbeef", out.CorrelationID)
	assert.Len(t, sendmail.calls, 2, "confirmation is never attempted without admin success")
	assert.True(t, log.contains("admin email not delivered by any transport"))
}

func TestSubmitValidationShortCircuits(t *testing.T) {
	cfg := mailConfig()
	cfg.To = nil
	transport := new(MockTransport)
	log := &recordingLog{}

	uc := newUsecase(t, cfg, log, transport)
	_, err := uc.Submit(context.Background(), "01234567", mario(), domain.RequestMeta{})

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, usecase.MsgNoRecipientSetup, vErr.Error())
	transport.AssertNotCalled(t, "Available")
	assert.True(t, log.contains("Validation FAIL: "+usecase.MsgNoRecipientSetup))
}

func TestAdminMessageAddressing(t *testing.T) {
	cfg := mailConfig()
	cfg.MailFrom = ""
	cfg.SMTPUser = "relay@sito.it"
	cfg.Cc = []string{"cc@x.com"}
	cfg.Bcc = []string{"bcc@x.com"}

	var admin *email.Message
	sess := new(MockSession)
	sess.On("Send", mock.Anything, mock.Anything).Return(email.Ok()).Run(func(args mock.Arguments) {
		admin = args.Get(1).(*email.Message)
	})
	sess.On("Close").Return(nil)
	primary := new(MockTransport)
	primary.On("Name").Return("smtp")
	primary.On("Available").Return(true)
	primary.On("Open", mock.Anything).Return(sess, email.Ok())

	uc := newUsecase(t, cfg, &recordingLog{}, primary)
	_, err := uc.Submit(context.Background(), "aaaa0000", mario(), domain.RequestMeta{})
	require.NoError(t, err)

	require.NotNil(t, admin)
	assert.Equal(t, email.Address{Name: "Sito", Email: "relay@sito.it"}, admin.From)
	assert.Equal(t, email.Address{Name: "Mario Rossi", Email: "mario@example.com"}, admin.ReplyTo)
	assert.Equal(t, email.Addresses([]string{"admin@x.com"}), admin.To)
	assert.Equal(t, email.Addresses([]string{"cc@x.com"}), admin.Cc)
	assert.Equal(t, email.Addresses([]string{"bcc@x.com"}), admin.Bcc)
	assert.Equal(t, "relay@sito.it", admin.EnvelopeSender)
	assert.Equal(t, cfg.Subject, admin.Subject)
}

func TestFallbackSenderIgnoresSMTPUserInHeaders(t *testing.T) {
	cfg := mailConfig()
	cfg.MailFrom = ""
	cfg.SMTPUser = "relay@sito.it"
	cfg.ConfirmEnabled = true
	sendmail := &sendmailRecorder{}

	uc := newUsecase(t, cfg, &recordingLog{}, email.NewSendmailRelay("/usr/sbin/sendmail", sendmail.run))
	outcome, err := uc.Submit(context.Background(), "bbbb1111", mario(), domain.RequestMeta{})
	require.NoError(t, err)
	assert.True(t, outcome.ConfirmSent)

	require.Len(t, sendmail.calls, 2)
	admin, confirm := sendmail.calls[0], sendmail.calls[1]
	assert.Contains(t, admin, "From: \"Sito\" <no-reply@localhost>\r\n")
	assert.NotContains(t, admin, "From: \"Sito\" <relay@sito.it>")
	assert.Contains(t, confirm, "From: \"Sito\" <no-reply@localhost>\r\n")
	assert.Contains(t, confirm, "Reply-To: \"Sito\" <no-reply@localhost>\r\n")

	// the envelope sender still falls back to the relay account
	assert.Equal(t, []string{"-t", "-i", "-f", "relay@sito.it"}, sendmail.args[0])
	assert.Equal(t, []string{"-t", "-i", "-f", "relay@sito.it"}, sendmail.args[1])
}
