package service

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// SMTPMailer sends invitation emails through a plain SMTP relay
type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewSMTPMailerFromEnv builds a mailer from SMTP_* environment variables.
// Returns nil when SMTP_HOST is unset, which disables email delivery.
func NewSMTPMailerFromEnv() *SMTPMailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil
	}

	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		port = p
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}

	return &SMTPMailer{
		host: host,
		port: port,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		from: from,
	}
}

var roleLabels = map[string]string{
	"admin":     "Administrador",
	"lawyer":    "Advogado",
	"assistant": "Assistente",
}

// SendInvite emails a new user their temporary credentials
func (m *SMTPMailer) SendInvite(to, name, role, officeName, tempPassword string) error {
	if officeName == "" {
		officeName = "LexDesk"
	}
	roleLabel := roleLabels[role]
	if roleLabel == "" {
		roleLabel = role
	}

	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Você foi convidado para o %s</h2>
  <p>Olá, %s!</p>
  <p>Você recebeu acesso à plataforma como <strong>%s</strong>.</p>
  <p>Use as credenciais abaixo para entrar. Recomendamos alterar a senha no primeiro acesso.</p>
  <p><strong>E-mail:</strong> %s<br/>
  <strong>Senha temporária:</strong> %s</p>
  <p>Atenciosamente,<br/>%s</p>
</div>`, officeName, name, roleLabel, to, tempPassword, officeName)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Convite para o %s", officeName))
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	return dialer.DialAndSend(msg)
}
