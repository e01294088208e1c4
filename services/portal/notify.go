package portal

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
)

// Notifier is told about genuinely new grade records right after a
// merge, so cohort alerts ("a grade just dropped") can go out. Failures
// are logged by the caller, never fatal to the scrape.
type Notifier interface {
	NotifyNewGrades(ctx context.Context, username string, records []GradeRecord) error
}

type NoopNotifier struct{}

func (NoopNotifier) NotifyNewGrades(context.Context, string, []GradeRecord) error {
	return nil
}

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
	// cohort mailbox the alerts go to
	Recipient string `json:"recipient"`
}

// SmtpNotifier mails a short digest of newly detected grades.
type SmtpNotifier struct {
	Config SmtpConfig
}

func (n SmtpNotifier) NotifyNewGrades(ctx context.Context, username string, records []GradeRecord) error {
	if len(records) == 0 {
		return nil
	}

	var lines []string
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("- %s : %s (%s)", r.Label, r.Grade, r.Date.Format("02/01/2006")))
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Aurassist <%s>", n.Config.EmailAddress)
	mail.To = []string{n.Config.Recipient}
	mail.Subject = fmt.Sprintf("%d nouvelle(s) note(s)", len(records))
	mail.Text = []byte(fmt.Sprintf(
		"De nouvelles notes sont disponibles sur le portail :\n\n%s\n",
		strings.Join(lines, "\n"),
	))

	return mail.Send(
		fmt.Sprintf("%s:%d", n.Config.Server, n.Config.Port),
		smtp.PlainAuth("", n.Config.EmailAddress, n.Config.Password, n.Config.Server),
	)
}
