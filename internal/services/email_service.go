package services

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"taskflow/internal/models"
)

type EmailService interface {
	SendWelcomeEmail(email, name string) error
	SendTaskAssignedEmail(email, name string, task *models.Task) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendWelcomeEmail(email, name string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to taskflow")

	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your account has been created. Sign in to see the tasks assigned to you.</p>
	`, html.EscapeString(name))
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (s *emailService) SendTaskAssignedEmail(email, name string, task *models.Task) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "New task: "+task.Title)
	m.SetBody("text/html", taskAssignedBody(name, task))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send task email: %w", err)
	}
	return nil
}

func taskAssignedBody(name string, t *models.Task) string {
	due := "—"
	if t.DueDate != nil {
		due = t.DueDate.Format("2006-01-02")
	}
	return fmt.Sprintf(`
		<p>Hi %s, a task was assigned to you.</p>
		<ul>
			<li><b>%s</b></li>
			<li>Status: <code>%s</code></li>
			<li>Priority: <code>%s</code></li>
			<li>Due: <code>%s</code></li>
		</ul>
	`, html.EscapeString(name), html.EscapeString(t.Title), t.Status, t.Priority, due)
}
