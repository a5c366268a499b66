package response

import (
	"net/http"

	"contact-mail-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// Fixed client-facing messages. Transport causes never reach the client.
const (
	MsgSent             = "Richiesta inviata correttamente. Ti ricontatteremo al più presto!"
	MsgSendFailed       = "Errore durante l’invio. Riprova tra qualche minuto."
	MsgMethodNotAllowed = "Metodo non consentito. Usa POST."
	MsgNotFound         = "Risorsa non trovata."
)

const contentTypeJSON = "application/json; charset=UTF-8"

// SuccessResponse is returned when the admin email went out.
// ConfirmSent is null when confirmations are disabled.
type SuccessResponse struct {
	OK          bool   `json:"ok"`
	Message     string `json:"message"`
	ConfirmSent *bool  `json:"confirm_sent"`
}

// ErrorResponse carries the correlation id for support lookup
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	RID   string `json:"rid"`
}

// RequestID returns the correlation id set by the RequestID middleware
func RequestID(c *gin.Context) string {
	return c.GetString(string(domain.KeyRequestID))
}

// Delivered maps a delivery outcome with AdminSent == true to the 200 payload.
func Delivered(c *gin.Context, outcome domain.DeliveryOutcome) {
	var confirm *bool
	if outcome.ConfirmEnabled {
		sent := outcome.ConfirmSent
		confirm = &sent
	}
	c.Header("Content-Type", contentTypeJSON)
	c.JSON(http.StatusOK, SuccessResponse{
		OK:          true,
		Message:     MsgSent,
		ConfirmSent: confirm,
	})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string) {
	c.Header("Content-Type", contentTypeJSON)
	c.JSON(code, ErrorResponse{
		OK:    false,
		Error: message,
		RID:   RequestID(c),
	})
}
