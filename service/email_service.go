// file: service/email_service.go

package service

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"merchant-api/logger"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Template names understood by the e-mail service.
const (
	TemplateVerificationCode  = "verification_code"
	TemplatePasswordReset     = "password_reset"
	TemplatePasswordChanged   = "password_changed"
	TemplateDeleteAccountCode = "delete_account_code"
)

// EmailService renders a named template and delivers it.
type EmailService interface {
	SendEmail(to, subject, templateName string, data map[string]any) error
}

// MailDialer is the part of gomail.Dialer the service needs.
type MailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSettings configures SMTPEmailService.
type EmailSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	AppName  string
}

type SMTPEmailService struct {
	dialer    MailDialer
	sender    string
	appName   string
	templates map[string]*template.Template
}

// NewSMTPEmailService creates an e-mail service that delivers through SMTP.
func NewSMTPEmailService(settings EmailSettings) (*SMTPEmailService, error) {
	dialer := gomail.NewDialer(settings.Host, settings.Port, settings.Username, settings.Password)
	return NewEmailService(dialer, settings.Sender, settings.AppName)
}

// NewEmailService creates an e-mail service on top of any dialer.
func NewEmailService(dialer MailDialer, sender, appName string) (*SMTPEmailService, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, err
	}
	return &SMTPEmailService{
		dialer:    dialer,
		sender:    sender,
		appName:   appName,
		templates: templates,
	}, nil
}

func loadTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	files, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("find email templates: %w", err)
	}
	templates := make(map[string]*template.Template)
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		if name == "base" {
			continue
		}
		t, err := template.New(name).ParseFS(fsys, "templates/base.html", file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		templates[name] = t
	}
	return templates, nil
}

// Render executes the named template with data.
func (s *SMTPEmailService) Render(templateName string, data map[string]any) (string, error) {
	t, ok := s.templates[templateName]
	if !ok {
		return "", fmt.Errorf("email template '%s' does not exist", templateName)
	}
	values := map[string]any{"AppName": s.appName}
	for k, v := range data {
		values[k] = v
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", values); err != nil {
		return "", fmt.Errorf("execute email template '%s': %w", templateName, err)
	}
	return buf.String(), nil
}

func (s *SMTPEmailService) SendEmail(to, subject, templateName string, data map[string]any) error {
	body, err := s.Render(templateName, data)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.sender)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("%s - %s", s.appName, subject))
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		logger.Log.WithFields(logrus.Fields{"to": to, "template": templateName}).WithError(err).Error("Failed to send email")
		return fmt.Errorf("send email: %w", err)
	}
	logger.Log.WithFields(logrus.Fields{"to": to, "template": templateName}).Info("Email sent")
	return nil
}
