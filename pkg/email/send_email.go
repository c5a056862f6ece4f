package email

import (
	"context"
	"fmt"
	"strconv"

	"educrm-api/pkg/model"
	"educrm-api/utils"

	"github.com/rs/zerolog/log"
	gomail "gopkg.in/mail.v2"
)

// Notifier emails staff when a task lands on their plate. It satisfies the
// task service's notifier hook.
type Notifier struct {
	from     string
	password string
	host     string
	port     int
}

// NewNotifierFromEnv returns nil when no sender address is configured, which
// disables assignment emails.
func NewNotifierFromEnv() *Notifier {
	from := utils.GetEnv("EMAIL_ADDRESS", "")
	if from == "" {
		return nil
	}
	port, err := strconv.Atoi(utils.GetEnv("SMTP_PORT", "587"))
	if err != nil {
		port = 587
	}
	return &Notifier{
		from:     from,
		password: utils.GetEnv("EMAIL_PASSWORD", ""),
		host:     utils.GetEnv("SMTP_HOST", "smtp.gmail.com"),
		port:     port,
	}
}

// TaskAssigned is best-effort: a delivery failure is logged and never fails
// the mutation that triggered it.
func (n *Notifier) TaskAssigned(ctx context.Context, assignee model.Staff, t model.Task) {
	subject := fmt.Sprintf("Task assigned to you: %s", t.Title)
	body := fmt.Sprintf(
		"Hi %s,\n\nTask %s (%s) has been assigned to you, due %s.\n\n%s\n",
		assignee.Name, t.TaskID, t.Title, t.DueDate.Format("2006-01-02"), t.Description,
	)
	go func() {
		if err := n.send(assignee.Email, subject, body); err != nil {
			log.Error().Err(err).Str("to", assignee.Email).Msg("Failed to send assignment email")
		}
	}()
}

func (n *Notifier) send(to string, subject string, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(n.host, n.port, n.from, n.password)
	return d.DialAndSend(m)
}
