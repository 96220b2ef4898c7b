package mail

import (
	"errors"
	"fmt"
	"net/smtp"
	"regexp"
	"strings"

	"aitio.org/internal/obs"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Message is one outbound mail.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
}

// Sender delivers messages. The delivery transport lives behind this
// interface; the access handlers only build messages.
type Sender interface {
	Send(msg Message) error
}

func validate(msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("mail: recipient is required")
	}
	if !emailPattern.MatchString(msg.To) {
		return errors.New("mail: invalid recipient address")
	}
	if n := len(msg.Subject); n < 5 || n > 100 {
		return errors.New("mail: subject is too short or too long")
	}
	if n := len(msg.Text); n < 3 || n > 10000 {
		return errors.New("mail: text is too short or too long")
	}
	return nil
}

// SMTPSender sends over a plain SMTP relay.
type SMTPSender struct {
	Addr     string // host:port
	Username string
	Password string
	Host     string
}

// NewSMTPSender configures delivery through the given relay.
func NewSMTPSender(addr, username, password string) *SMTPSender {
	host := addr
	if i := strings.IndexByte(addr, ':'); i >= 0 {
		host = addr[:i]
	}
	return &SMTPSender{Addr: addr, Username: username, Password: password, Host: host}
}

func (s *SMTPSender) Send(msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		msg.From, msg.To, msg.Subject, msg.Text)
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	if err := smtp.SendMail(s.Addr, auth, msg.From, []string{msg.To}, []byte(body)); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

// LogSender writes messages to the service log instead of delivering
// them. Used in development when no relay is configured.
type LogSender struct{}

func (LogSender) Send(msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	obs.Event("info", "mail not delivered (no relay configured)", map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}
