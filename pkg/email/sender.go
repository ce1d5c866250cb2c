package email

import (
	"bytes"
	"html/template"
	"path/filepath"

	"github.com/pkg/errors"
)

var (
	ErrEmptyRecipient = errors.New("empty recipient")
	ErrEmptyContent   = errors.New("empty subject or body")
	ErrInvalidAddress = errors.New("invalid recipient address")
)

type SendEmailInput struct {
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(input SendEmailInput) error
}

// GenerateBodyFromHTML renders templateFileName from templatesDir into Body.
// Values in data are HTML-escaped by html/template.
func (e *SendEmailInput) GenerateBodyFromHTML(templatesDir string, templateFileName string, data any) error {
	t, err := template.ParseFiles(filepath.Join(templatesDir, templateFileName))
	if err != nil {
		return errors.Wrapf(err, "parse template %s", templateFileName)
	}

	var buf bytes.Buffer
	if err = t.Execute(&buf, data); err != nil {
		return errors.Wrapf(err, "execute template %s", templateFileName)
	}

	e.Body = buf.String()

	return nil
}

func (e *SendEmailInput) Validate() error {
	switch {
	case e.To == "":
		return ErrEmptyRecipient
	case e.Subject == "" || e.Body == "":
		return ErrEmptyContent
	case !IsEmailValid(e.To):
		return errors.Wrap(ErrInvalidAddress, e.To)
	}

	return nil
}
