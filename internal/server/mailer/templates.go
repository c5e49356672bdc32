package mailer

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl"))
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl"))
)

// SignOffCopyData feeds the email copy sent to an author after their
// sign-off is recorded.
type SignOffCopyData struct {
	AppName       string
	ItemName      string
	AuthorName    string
	SignDate      time.Time
	VersionSigned int
}

// ReviewRequestData feeds the review-request email sent to each target
// author, carrying the tokenized approval link.
type ReviewRequestData struct {
	AppName     string
	ItemName    string
	ApprovalURL string
	Expires     time.Time
}

// RenderSignOffCopy renders the text and HTML bodies of the sign-off copy
// email.
func RenderSignOffCopy(data SignOffCopyData) (string, string, error) {
	return render("sign_off_copy", data)
}

// RenderReviewRequest renders the text and HTML bodies of the review
// request email.
func RenderReviewRequest(data ReviewRequestData) (string, string, error) {
	return render("review_request", data)
}

func render(name string, data any) (string, string, error) {
	var text bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&text, name+".txt.tmpl", data); err != nil {
		return "", "", err
	}

	var html bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, name+".html.tmpl", data); err != nil {
		return "", "", err
	}

	return text.String(), html.String(), nil
}
