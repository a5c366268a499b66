package validation

import (
	"regexp"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New()

	// Characters allowed in an envelope sender handed to sendmail -f
	envelopeUnsafe = regexp.MustCompile(`[^a-zA-Z0-9@.\-_+]`)
)

// IsEmail reports whether v is a syntactically valid email address.
func IsEmail(v string) bool {
	return validate.Var(v, "required,email") == nil
}

// MinRunes reports whether v has at least n characters (not bytes).
func MinRunes(v string, n int) bool {
	return utf8.RuneCountInString(v) >= n
}

// SanitizeEnvelopeSender strips everything but letters, digits and @ . - _ +
func SanitizeEnvelopeSender(v string) string {
	return envelopeUnsafe.ReplaceAllString(v, "")
}
