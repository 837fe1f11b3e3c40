package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"spclub/api/internal/config"
	"spclub/api/internal/models"
)

// Mailer sends lifecycle notifications to applicants. All sends are
// fire-and-forget: callers dispatch on a goroutine and failures are only
// logged, never surfaced to the triggering request.
type Mailer struct {
	cfg config.SMTPConfig
	log zerolog.Logger
}

func NewMailer(cfg config.SMTPConfig, log zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

var approvalTmpl = template.Must(template.New("approval").Parse(`
<html><body>
<h2>Congratulations, {{.Name}}!</h2>
<p>Your registration with <strong>SP Club</strong> has been <strong>approved</strong>.</p>
<ul>
  <li>Name: {{.Name}}</li>
  <li>Role: {{.Role}}</li>
  <li>Blood group: {{.BloodGroup}}</li>
  <li>Registered: {{.RegisteredAt.Format "2 January 2006"}}</li>
</ul>
<p>Please visit the club with a valid ID proof to complete membership formalities.</p>
</body></html>`))

var rejectionTmpl = template.Must(template.New("rejection").Parse(`
<html><body>
<h2>Registration status update</h2>
<p>Dear {{.Reg.Name}},</p>
<p>After careful review we are unable to approve your registration at this time.</p>
{{if .Reason}}<p><strong>Reason:</strong> {{.Reason}}</p>{{end}}
<p>You are welcome to reapply in the future.</p>
</body></html>`))

func (m *Mailer) NotifyApproved(reg models.Registration) {
	var body bytes.Buffer
	if err := approvalTmpl.Execute(&body, reg); err != nil {
		m.log.Error().Err(err).Msg("render approval mail")
		return
	}
	m.send(reg.Email, "Your SP Club registration is approved", body.String())
}

func (m *Mailer) NotifyRejected(reg models.Registration, reason string) {
	var body bytes.Buffer
	data := struct {
		Reg    models.Registration
		Reason string
	}{reg, reason}
	if err := rejectionTmpl.Execute(&body, data); err != nil {
		m.log.Error().Err(err).Msg("render rejection mail")
		return
	}
	m.send(reg.Email, "SP Club registration update", body.String())
}

func (m *Mailer) send(to string, subject string, htmlBody string) {
	if !m.cfg.Enabled {
		m.log.Debug().Str("to", to).Str("subject", subject).Msg("mailer disabled, skipping send")
		return
	}

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", m.cfg.From),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		fmt.Sprintf("Date: %s", time.Now().Format(time.RFC1123Z)),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		m.log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("send mail failed")
		return
	}
	m.log.Info().Str("to", to).Str("subject", subject).Msg("mail sent")
}
