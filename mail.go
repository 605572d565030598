package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const mailQueue = "mail"

type MailMessage struct {
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html,omitempty"`
}

type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

type SMTPMailer struct {
	config SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{config: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, msg MailMessage) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("mail has no recipients")
	}
	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	return smtp.SendMail(addr, auth, m.config.From, msg.To, buildMIMEMessage(m.config.From, msg, time.Now()))
}

// buildMIMEMessage renders a multipart/alternative message when an HTML body
// is present and a plain text one otherwise.
func buildMIMEMessage(from string, msg MailMessage, now time.Time) []byte {
	var b strings.Builder
	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, singleLine(addr))
	}
	fmt.Fprintf(&b, "From: %s\r\n", singleLine(from))
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", singleLine(msg.ReplyTo))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", singleLine(msg.Subject)))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")

	if msg.HTML == "" {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(msg.Text)
		return []byte(b.String())
	}

	boundary := "alt-" + uuid.NewString()
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n", boundary, msg.Text)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s\r\n", boundary, msg.HTML)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// singleLine keeps a header value on one line.
func singleLine(s string) string {
	return strings.TrimSpace(lineBreaks.Replace(s))
}

// LogMailer stands in when no SMTP relay is configured.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg MailMessage) error {
	m.logger.Info("mail not sent, smtp disabled",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// QueueMailer hands mail to the worker pool through the durable mail queue.
type QueueMailer struct {
	conn *amqp.Connection
}

func NewQueueMailer(conn *amqp.Connection) *QueueMailer {
	return &QueueMailer{conn: conn}
}

func (m *QueueMailer) Send(ctx context.Context, msg MailMessage) error {
	ch, err := m.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := declareMailQueue(ch); err != nil {
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return ch.Publish(
		"",        // default exchange
		mailQueue, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func declareMailQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		mailQueue, // queue name
		true,      // durable (survives broker restarts)
		false,     // auto-delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	return nil
}

func verificationEmail(appURL string, user User, token string) MailMessage {
	link := fmt.Sprintf("%s/verify?token=%s", appURL, token)
	return MailMessage{
		To:      []string{user.Email},
		Subject: "Verify your email address",
		Text: fmt.Sprintf("Hi %s,\n\nConfirm your email address to start optimizing your resume:\n\n%s\n\nIf you did not create an account you can ignore this message.\n",
			user.Name, link),
		HTML: fmt.Sprintf(`<p>Hi %s,</p><p>Confirm your email address to start optimizing your resume:</p><p><a href="%s">Verify email</a></p><p>If you did not create an account you can ignore this message.</p>`,
			html.EscapeString(user.Name), link),
	}
}

func contactNotificationEmail(inbox string, name, email, subject, message string) MailMessage {
	if subject == "" {
		subject = "(no subject)"
	}
	return MailMessage{
		To:      []string{inbox},
		ReplyTo: email,
		Subject: "Contact form: " + subject,
		Text:    fmt.Sprintf("From: %s <%s>\n\n%s\n", name, email, message),
	}
}
