package v1

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"contact-mail-backend/internal/delivery/http/response"
	"contact-mail-backend/internal/domain"
	"contact-mail-backend/internal/usecase"
	"contact-mail-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes caps what is read from a submission
const maxBodyBytes = 1 << 20

type ContactHandler struct {
	contactUC domain.ContactUsecase
	log       domain.RequestLogger
}

// NewContactHandler registers the contact routes (public, no auth required)
func NewContactHandler(public gin.IRoutes, contactUC domain.ContactUsecase, log domain.RequestLogger) *ContactHandler {
	handler := &ContactHandler{
		contactUC: contactUC,
		log:       log,
	}

	public.POST("/send-mail", handler.SendMail)
	return handler
}

// SendMail godoc
// @Summary      Submit Contact Form
// @Description  Validates a contact form submission and emails it to the site owner, optionally confirming to the sender.
// @Tags         contact
// @Accept       json,x-www-form-urlencoded,mpfd
// @Produce      json
// @Param        contact  body      domain.SubmissionInput  true  "Contact Form Data"
// @Success      200      {object}  response.SuccessResponse
// @Failure      405      {object}  response.ErrorResponse
// @Failure      422      {object}  response.ErrorResponse
// @Failure      500      {object}  response.ErrorResponse
// @Router       /send-mail [post]
func (h *ContactHandler) SendMail(c *gin.Context) {
	rid := response.RequestID(c)

	kind, form, raw := readSubmission(c.Request)
	if kind == domain.ContentForm {
		h.log.Log(rid, "Input: form-data")
	} else {
		h.log.Log(rid, "Input: JSON")
	}

	input := usecase.Normalize(kind, form, raw)
	meta := domain.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Timestamp: time.Now(),
	}

	outcome, err := h.contactUC.Submit(c.Request.Context(), rid, input, meta)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			c.Error(apperror.Unprocessable(vErr.Error()))
			return
		}
		c.Error(apperror.Internal(response.MsgSendFailed, err))
		return
	}

	response.Delivered(c, outcome)
}

// NoMethod answers every verb other than POST (and OPTIONS, handled by CORS).
func (h *ContactHandler) NoMethod(c *gin.Context) {
	h.log.Log(response.RequestID(c), "ERROR: method not allowed")
	c.Error(apperror.MethodNotAllowed(response.MsgMethodNotAllowed))
}

// readSubmission prefers parsed form fields and falls back to the raw body,
// which the normalizer then treats as JSON.
func readSubmission(r *http.Request) (domain.ContentKind, url.Values, []byte) {
	raw, _ := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxBodyBytes)
	} else {
		err = r.ParseForm()
	}
	if err == nil && len(r.PostForm) > 0 {
		return domain.ContentForm, r.PostForm, raw
	}
	return domain.ContentJSON, nil, raw
}
