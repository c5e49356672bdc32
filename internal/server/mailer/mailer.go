// Package mailer sends templated notification email. Dispatch is
// fire-and-forget: messages are queued to a background worker and failures
// are logged, never surfaced to the request that queued them.
package mailer

import (
	"context"
	"sync"

	mail "github.com/wneessen/go-mail"

	"github.com/meridianpress/newsdesk/internal/logging"
)

// Message is one outgoing email with both text and HTML bodies.
type Message struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender queues a message for delivery.
type Sender interface {
	Queue(msg Message)
}

// SMTPMailer delivers queued messages over SMTP.
type SMTPMailer struct {
	host     string
	port     int
	user     string
	password string
	from     string

	queue  chan Message
	wg     sync.WaitGroup
	logger logging.Logger
}

func NewSMTPMailer(host string, port int, user, password, from string, logger logging.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
		queue:    make(chan Message, 64),
		logger:   logger.With("module", "mailer"),
	}
}

// Queue enqueues msg without blocking; when the queue is full the message
// is dropped with a logged error rather than stalling the request path.
func (m *SMTPMailer) Queue(msg Message) {
	select {
	case m.queue <- msg:
	default:
		m.logger.Error(context.Background(), "mail queue full, dropping message", "subject", msg.Subject)
	}
}

// Run processes the queue until ctx is cancelled, then drains whatever is
// already queued before returning.
func (m *SMTPMailer) Run(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			select {
			case <-ctx.Done():
				m.drain()
				return
			case msg := <-m.queue:
				m.send(context.Background(), msg)
			}
		}
	}()
}

// Wait blocks until the worker has stopped.
func (m *SMTPMailer) Wait() {
	m.wg.Wait()
}

func (m *SMTPMailer) drain() {
	for {
		select {
		case msg := <-m.queue:
			m.send(context.Background(), msg)
		default:
			return
		}
	}
}

func (m *SMTPMailer) send(ctx context.Context, msg Message) {
	email := mail.NewMsg()
	if err := email.From(m.from); err != nil {
		m.logger.Error(ctx, "invalid sender address", "from", m.from, "error", err.Error())
		return
	}
	if err := email.To(msg.To...); err != nil {
		m.logger.Error(ctx, "invalid recipient address", "error", err.Error())
		return
	}
	email.Subject(msg.Subject)
	email.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	if msg.HTMLBody != "" {
		email.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	}

	opts := []mail.Option{mail.WithPort(m.port), mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if m.user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.user),
			mail.WithPassword(m.password))
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		m.logger.Error(ctx, "smtp client error", "error", err.Error())
		return
	}

	if err := client.DialAndSendWithContext(ctx, email); err != nil {
		m.logger.Error(ctx, "email delivery failed", "subject", msg.Subject, "error", err.Error())
		return
	}

	m.logger.Info(ctx, "email sent", "subject", msg.Subject, "recipients", len(msg.To))
}
