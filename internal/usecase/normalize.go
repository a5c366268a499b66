package usecase

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"strings"

	"contact-mail-backend/internal/domain"
)

var headerBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// Normalize extracts the submission fields from a form or a JSON body.
// It never fails: missing or malformed input yields empty fields, which
// validation rejects later.
func Normalize(kind domain.ContentKind, form url.Values, raw []byte) domain.SubmissionInput {
	var get func(key string) string

	switch kind {
	case domain.ContentForm:
		get = form.Get
	default:
		obj := decodeObject(raw)
		get = func(key string) string { return coerceString(obj[key]) }
	}

	return domain.SubmissionInput{
		Name:    singleLine(get("name")),
		Email:   singleLine(get("email")),
		Phone:   singleLine(get("phone")),
		Message: strings.TrimSpace(get("message")),
	}
}

// singleLine removes CR/LF so the value is safe to place in a mail header
func singleLine(v string) string {
	return strings.TrimSpace(headerBreaks.Replace(v))
}

// decodeObject reads a single JSON object, keeping numbers as written.
// Anything else yields nil.
func decodeObject(raw []byte) map[string]any {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil
	}
	return obj
}

// coerceString turns a decoded JSON value into the string a form field would carry
func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "1"
		}
	}
	return ""
}
