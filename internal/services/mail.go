package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"microblog/internal/config"
	"microblog/internal/models"

	"github.com/wneessen/go-mail"
)

// ErrServiceUnavailable marks a mail or translation backend that is unreachable or not configured.
var ErrServiceUnavailable = errors.New("service unavailable")

type Message struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	useTLS   bool
	from     string
}

func NewSMTPSender(cfg config.Config) *SMTPSender {
	return &SMTPSender{
		host:     cfg.MailServer,
		port:     cfg.MailPort,
		username: cfg.MailUsername,
		password: cfg.MailPassword,
		useTLS:   cfg.MailUseTLS,
		from:     cfg.MailSender,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("invalid sender %q: %w", s.from, err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	}

	opts := []mail.Option{mail.WithTimeout(10 * time.Second)}
	if s.port > 0 {
		opts = append(opts, mail.WithPort(s.port))
	}
	if s.useTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if s.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.username),
			mail.WithPassword(s.password),
		)
	}

	client, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return nil
}

// logSender is used when no MAIL_SERVER is configured; messages are only logged.
type logSender struct {
	logger *slog.Logger
}

func (s logSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("Mail transport not configured, logging message", "to", msg.To, "subject", msg.Subject)
	return nil
}

// MailService queues outgoing mail and delivers it from a background worker so requests never wait
// on the SMTP relay.
type MailService struct {
	sender Sender
	logger *slog.Logger
	queue  chan Message
}

func NewMailService(cfg config.Config, logger *slog.Logger) *MailService {
	var sender Sender = logSender{logger: logger}
	if cfg.MailServer != "" {
		sender = NewSMTPSender(cfg)
	}
	return NewMailServiceWithSender(sender, logger)
}

func NewMailServiceWithSender(sender Sender, logger *slog.Logger) *MailService {
	return &MailService{
		sender: sender,
		logger: logger,
		queue:  make(chan Message, 100),
	}
}

func (s *MailService) Start(ctx context.Context) {
	s.logger.Info("Mail worker starting")
	for {
		select {
		case msg := <-s.queue:
			sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if err := s.sender.Send(sendCtx, msg); err != nil {
				s.logger.Error("Failed to send mail", "to", msg.To, "subject", msg.Subject, "error", err)
			}
			cancel()
		case <-ctx.Done():
			s.logger.Info("Mail worker stopping")
			return
		}
	}
}

// Send enqueues msg and reports whether it was accepted.
func (s *MailService) Send(msg Message) bool {
	select {
	case s.queue <- msg:
		return true
	default:
		s.logger.Warn("Mail queue full, dropping message", "subject", msg.Subject)
		return false
	}
}

// SendPasswordResetEmail mails the reset link for token to the user.
func (s *MailService) SendPasswordResetEmail(user *models.User, token, baseURL string) bool {
	link := strings.TrimRight(baseURL, "/") + "/reset_password/" + url.PathEscape(token)
	return s.Send(Message{
		To:      []string{user.Email},
		Subject: "[Microblog] Reset Your Password",
		TextBody: fmt.Sprintf("Dear %s,\n\nTo reset your password click on the following link:\n\n%s\n\n"+
			"If you have not requested a password reset simply ignore this message.\n\nSincerely,\n\nThe Microblog Team\n",
			user.Username, link),
		HTMLBody: fmt.Sprintf("<p>Dear %s,</p><p>To reset your password <a href=\"%s\">click here</a>.</p>"+
			"<p>If you have not requested a password reset simply ignore this message.</p>"+
			"<p>Sincerely,</p><p>The Microblog Team</p>",
			htmlEscape(user.Username), link),
	})
}

var htmlReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;", "'", "&#39;")

func htmlEscape(s string) string {
	return htmlReplacer.Replace(s)
}
