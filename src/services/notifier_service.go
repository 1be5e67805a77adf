package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/username/linkpulse/backend/src/config"
	"github.com/username/linkpulse/backend/src/logger"
)

func NewNotifierService() NotifierService {
	if config.Cfg == nil {
		slog.Error("Configuration (config.Cfg) is nil. Notifier service will default to mock.")
		return &MockNotifierService{}
	}

	provider := strings.ToLower(config.Cfg.EmailServiceProvider)
	logger.L.Info("Initializing notifier service", "provider", provider)

	switch provider {
	case "mailgun":
		if config.Cfg.MailgunDomain == "" || config.Cfg.MailgunPrivateAPIKey == "" || config.Cfg.SyncReportRecipient == "" {
			logger.L.Warn("Mailgun configuration incomplete (Domain, API Key, or SyncReportRecipient missing). Falling back to MockNotifierService.")
			return &MockNotifierService{}
		}
		mg := mailgun.NewMailgun(config.Cfg.MailgunDomain, config.Cfg.MailgunPrivateAPIKey)
		logger.L.Info("Mailgun client initialized", "domain", config.Cfg.MailgunDomain)
		return &MailgunNotifierService{
			mg:          mg,
			senderEmail: config.Cfg.SenderEmail,
			senderName:  config.Cfg.SenderName,
			recipient:   config.Cfg.SyncReportRecipient,
		}
	case "smtp":
		if config.Cfg.SMTPServer == "" || config.Cfg.SMTPUser == "" || config.Cfg.SMTPPassword == "" || config.Cfg.SyncReportRecipient == "" {
			logger.L.Warn("SMTP configuration incomplete. Falling back to MockNotifierService.")
			return &MockNotifierService{}
		}
		return &SMTPNotifierService{
			SMTPServer:   config.Cfg.SMTPServer,
			SMTPPort:     config.Cfg.SMTPPort,
			SMTPUser:     config.Cfg.SMTPUser,
			SMTPPassword: config.Cfg.SMTPPassword,
			SenderEmail:  config.Cfg.SenderEmail,
			Recipient:    config.Cfg.SyncReportRecipient,
		}
	default:
		logger.L.Info("Defaulting to MockNotifierService.")
		return &MockNotifierService{}
	}
}

func reportSubject(report *SyncReport, runErr error) string {
	if runErr != nil {
		return fmt.Sprintf("Sync run %s FAILED (publisher %d)", report.RunID, report.PublisherID)
	}
	return fmt.Sprintf("Sync run %s completed (publisher %d)", report.RunID, report.PublisherID)
}

func reportBody(report *SyncReport, runErr error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run:       %s\n", report.RunID)
	fmt.Fprintf(&b, "Publisher: %d\n", report.PublisherID)
	fmt.Fprintf(&b, "Started:   %s\n", report.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Duration:  %s\n\n", report.Duration)
	for kind, count := range report.Upserted {
		fmt.Fprintf(&b, "%-18s upserted=%d skipped=%d\n", kind, count, report.Skipped[kind])
	}
	if runErr != nil {
		fmt.Fprintf(&b, "\nRun aborted: %v\n", runErr)
		fmt.Fprintf(&b, "Items upserted before the failure remain committed.\n")
	}
	return b.String()
}

type MailgunNotifierService struct {
	mg          *mailgun.MailgunImpl
	senderEmail string
	senderName  string
	recipient   string
}

func (s *MailgunNotifierService) SendSyncReport(report *SyncReport, runErr error) error {
	sender := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	message := mailgun.NewMessage(sender, reportSubject(report, runErr), reportBody(report, runErr), s.recipient)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("Failed to send sync report via Mailgun", "error", err, "runID", report.RunID)
		return fmt.Errorf("failed to send sync report via Mailgun: %w", err)
	}
	logger.L.Info("Sync report sent via Mailgun", "runID", report.RunID, "to", s.recipient)
	return nil
}

type SMTPNotifierService struct {
	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SenderEmail  string
	Recipient    string
}

func (s *SMTPNotifierService) SendSyncReport(report *SyncReport, runErr error) error {
	header := make(map[string]string)
	header["From"] = s.SenderEmail
	header["To"] = s.Recipient
	header["Subject"] = reportSubject(report, runErr)
	header["MIME-version"] = "1.0"
	header["Content-Type"] = "text/plain; charset=\"UTF-8\""
	message := ""
	for k, v := range header {
		message += fmt.Sprintf("%s: %s\r\n", k, v)
	}
	message += "\r\n" + reportBody(report, runErr)

	auth := smtp.PlainAuth("", s.SMTPUser, s.SMTPPassword, s.SMTPServer)
	addr := fmt.Sprintf("%s:%d", s.SMTPServer, s.SMTPPort)
	if err := smtp.SendMail(addr, auth, s.SenderEmail, []string{s.Recipient}, []byte(message)); err != nil {
		logger.L.Error("Failed to send sync report via SMTP", "error", err, "runID", report.RunID)
		return fmt.Errorf("failed to send sync report via SMTP: %w", err)
	}
	logger.L.Info("Sync report sent via SMTP", "runID", report.RunID, "to", s.Recipient)
	return nil
}

// MockNotifierService logs the report instead of mailing it. Used when no
// email provider is configured.
type MockNotifierService struct{}

func (s *MockNotifierService) SendSyncReport(report *SyncReport, runErr error) error {
	if logger.L != nil {
		logger.L.Info("MOCK sync report", "subject", reportSubject(report, runErr), "body", reportBody(report, runErr))
	}
	return nil
}
