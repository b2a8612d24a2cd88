package services

import (
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"github.com/matchwise/backend/internal/config"
	"github.com/matchwise/backend/pkg/logger"
)

const mailBoundary = "matchwise-alt-boundary"

type EmailService struct {
	cfg  config.MailConfig
	send func(cfg *config.MailConfig, to []string, message string) error
}

func NewEmailService(cfg config.MailConfig) *EmailService {
	return &EmailService{cfg: cfg, send: deliverSMTP}
}

// MatchNotification is the data rendered into the new-matches email.
type MatchNotification struct {
	ProjectID         uint
	NewMatchesCount   int
	TotalMatchesCount int64
	ProjectURL        string
	Year              int
}

func (s *EmailService) Enabled() bool {
	return s.cfg.Enabled()
}

// SendMatchNotification emails the client of a project about newly created matches.
// It is a no-op when no SMTP host is configured.
func (s *EmailService) SendMatchNotification(email string, projectID uint, newCount int, totalCount int64) error {
	if !s.Enabled() {
		logger.Debug().Uint("project_id", projectID).Msg("[Email] Mail disabled, notification dropped")
		return nil
	}
	if email == "" {
		return nil
	}

	n := &MatchNotification{
		ProjectID:         projectID,
		NewMatchesCount:   newCount,
		TotalMatchesCount: totalCount,
		ProjectURL:        fmt.Sprintf("%s/projects/%d", strings.TrimRight(s.cfg.FrontendURL, "/"), projectID),
		Year:              time.Now().Year(),
	}

	subject := fmt.Sprintf("New Matches for Project %d", projectID)
	html, err := buildMatchEmailBody(n)
	if err != nil {
		return fmt.Errorf("render match notification: %w", err)
	}

	message := s.buildMessage([]string{email}, subject, matchEmailText(n), html)
	if err := s.send(&s.cfg, []string{email}, message); err != nil {
		logger.Error().Err(err).Str("to", email).Msg("[Email] Failed to send email")
		return err
	}

	logger.Info().Str("to", email).Uint("project_id", projectID).Msg("[Email] Sent match notification")
	return nil
}

func matchEmailText(n *MatchNotification) string {
	return fmt.Sprintf("We have found %d new matches for your project (ID: %d). Total matches: %d. Please login to review them.",
		n.NewMatchesCount, n.ProjectID, n.TotalMatchesCount)
}

var matchEmailTemplate = template.Must(template.New("match").Parse(`<html><body style="font-family: Arial, sans-serif;">
<h2>New Matches for Your Project</h2>
<p>Hello,</p>
<p>We are excited to inform you that <strong>{{.NewMatchesCount}}</strong> new matches have been found for your project (ID: {{.ProjectID}}).</p>
<p style="font-size: 20px; font-weight: bold;">{{.NewMatchesCount}} New Matches</p>
<p>Total Matches for this Project: {{.TotalMatchesCount}}</p>
<p>Please review the matches by logging into your account:</p>
<p><a href="{{.ProjectURL}}">View Matches</a></p>
<hr><p style="color: #888; font-size: 12px;">&copy; {{.Year}} Matchwise</p>
</body></html>`))

func buildMatchEmailBody(n *MatchNotification) (string, error) {
	var sb strings.Builder
	if err := matchEmailTemplate.Execute(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// buildMessage assembles a multipart/alternative message with text and HTML parts.
func (s *EmailService) buildMessage(to []string, subject, text, html string) string {
	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	var message strings.Builder
	message.WriteString(fmt.Sprintf("From: %s\r\n", from))
	message.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ",")))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n", mailBoundary))
	message.WriteString("\r\n")

	message.WriteString("--" + mailBoundary + "\r\n")
	message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	message.WriteString(text + "\r\n")

	message.WriteString("--" + mailBoundary + "\r\n")
	message.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	message.WriteString(html + "\r\n")

	message.WriteString("--" + mailBoundary + "--\r\n")
	return message.String()
}

func deliverSMTP(cfg *config.MailConfig, to []string, message string) error {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	if !cfg.UseTLS {
		return smtp.SendMail(addr, auth, from, to, []byte(message))
	}
	return deliverSMTPTLS(cfg, addr, auth, from, to, message)
}

func deliverSMTPTLS(cfg *config.MailConfig, addr string, auth smtp.Auth, from string, to []string, message string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
