package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateKind selects which body to render
type TemplateKind string

const (
	KindAdmin        TemplateKind = "admin"
	KindConfirmation TemplateKind = "confirmation"
)

// TemplateData holds the data for contact form emails. User supplied
// fields are escaped by html/template.
type TemplateData struct {
	SiteName  string
	Subject   string
	Name      string
	Email     string
	Phone     string
	Message   string
	Timestamp string
	IP        string
	UserAgent string
}

// Renderer produces the admin and confirmation HTML bodies
type Renderer struct {
	tmpl *template.Template
}

var lineBreaks = strings.NewReplacer("\r\n", "<br>\n", "\n", "<br>\n", "\r", "<br>\n")

// nl2br escapes s and turns its line breaks into <br> elements.
func nl2br(s string) template.HTML {
	return template.HTML(lineBreaks.Replace(template.HTMLEscapeString(s)))
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("email").
		Funcs(template.FuncMap{"nl2br": nl2br}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Render(kind TemplateKind, data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&body, string(kind)+".html", data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", kind, err)
	}
	return body.String(), nil
}
