// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendOperatorAlert(subject, body string) error
}

type emailService struct {
	dialer       *gomail.Dialer
	senderEmail  string
	operatorAddr string
}

func NewEmailService(host string, port int, username, password, senderEmail, operatorAddr string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:       d,
		senderEmail:  senderEmail,
		operatorAddr: operatorAddr,
	}
}

// SendOperatorAlert mails the on-call operator inbox. Used for conditions a
// human must act on, e.g. a subscription whose charge retry budget is spent.
func (s *emailService) SendOperatorAlert(subject, body string) error {
	if s.operatorAddr == "" {
		return fmt.Errorf("operator alert address not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", s.operatorAddr)
	m.SetHeader("Subject", "[billing] "+subject)

	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Billing alert</h2>
			<pre style="background: #f6f6f6; padding: 12px;">%s</pre>
		</div>
	`, body)

	m.SetBody("text/html", html)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send operator alert: %v\n", err)
		return err
	}

	return nil
}
