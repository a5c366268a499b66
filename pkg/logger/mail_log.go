package logger

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const mailLogTimeLayout = "2006-01-02 15:04:05"

// MailLog is the append-only request log. Each line has the form
// "[YYYY-MM-DD HH:MM:SS] [rid] message". Writing is best effort: errors
// are dropped and never reach the caller.
type MailLog struct {
	z      *zap.Logger
	closer io.Closer
}

// NewMailLog opens path for appending. When the file cannot be opened the
// returned MailLog still mirrors events to the process logger.
func NewMailLog(path string, loc *time.Location) (*MailLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &MailLog{z: zap.NewNop()}, fmt.Errorf("open mail log %s: %w", path, err)
	}
	l := NewMailLogWriter(f, loc)
	l.closer = f
	return l, nil
}

// NewMailLogWriter writes log lines to w.
func NewMailLogWriter(w io.Writer, loc *time.Location) *MailLog {
	if loc == nil {
		loc = time.Local
	}
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:    "ts",
		MessageKey: "msg",
		LineEnding: zapcore.DefaultLineEnding,
		EncodeTime: func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
			pae.AppendString("[" + t.In(loc).Format(mailLogTimeLayout) + "]")
		},
		ConsoleSeparator: " ",
	})
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.DebugLevel)
	// internal zap errors (failed writes) are discarded
	z := zap.New(core, zap.ErrorOutput(zapcore.AddSync(io.Discard)))
	return &MailLog{z: z}
}

// Log appends one line for the request identified by rid.
func (l *MailLog) Log(rid, message string) {
	if l == nil {
		return
	}
	l.z.Info("[" + rid + "] " + message)
	Log.Debug(message, "rid", rid)
}

// Close flushes and releases the underlying file.
func (l *MailLog) Close() error {
	if l == nil {
		return nil
	}
	_ = l.z.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// NewCorrelationID returns a short random token (8 hex chars) identifying
// one request across its log lines and error responses.
func NewCorrelationID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:4])
}
