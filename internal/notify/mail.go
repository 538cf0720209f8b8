package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/gomail.v2"

	"showbiz/internal/errors"
	"showbiz/internal/metrics"
)

// MailConfig is the SMTP account and worker pool used for outbound mail.
type MailConfig struct {
	Host      string
	Port      int
	User      string
	Pass      string
	FromName  string
	Workers   int
	QueueSize int
}

// Dialer opens an authenticated SMTP session. *gomail.Dialer implements it.
type Dialer interface {
	Dial() (gomail.SendCloser, error)
}

type job struct {
	msg Message
}

// MailNotifier sends HTML mail over SMTP from a bounded queue of background workers.
type MailNotifier struct {
	cfg     MailConfig
	dialer  Dialer
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	jobs   chan job
	wg     sync.WaitGroup
}

// NewMailNotifier validates cfg and starts the delivery workers.
func NewMailNotifier(cfg MailConfig, logger *slog.Logger, m *metrics.Metrics) (*MailNotifier, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Pass == "" {
		return nil, errors.Config("mail host, user and password are required")
	}
	return newMailNotifier(cfg, gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass), logger, m), nil
}

func newMailNotifier(cfg MailConfig, dialer Dialer, logger *slog.Logger, m *metrics.Metrics) *MailNotifier {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}

	n := &MailNotifier{
		cfg:     cfg,
		dialer:  dialer,
		logger:  logger,
		metrics: m,
		jobs:    make(chan job, cfg.QueueSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		n.wg.Add(1)
		go n.worker()
	}
	return n
}

func (n *MailNotifier) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return errors.Notification("failed to send email", err)
	}

	// Handshake check only; the worker dials its own session for delivery.
	sender, err := n.dialer.Dial()
	if err != nil {
		n.metrics.ObserveNotification(msg.Template, err)
		n.logger.ErrorContext(ctx, "smtp handshake failed", "to", msg.To, "template", msg.Template, "error", err)
		return errors.Notification("failed to send email", err)
	}
	_ = sender.Close()

	if !n.enqueue(job{msg: msg}) {
		err := fmt.Errorf("mail queue full")
		n.metrics.ObserveNotification(msg.Template, err)
		return errors.Notification("failed to send email", err)
	}
	return nil
}

func (n *MailNotifier) NotifyAsync(ctx context.Context, msg Message) {
	if !n.enqueue(job{msg: msg}) {
		n.metrics.ObserveNotification(msg.Template, fmt.Errorf("mail queue full"))
		n.logger.WarnContext(ctx, "mail queue full, message dropped", "to", msg.To, "template", msg.Template)
	}
}

// Close stops accepting messages and waits for queued ones to be delivered.
func (n *MailNotifier) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	close(n.jobs)
	n.mu.Unlock()

	n.wg.Wait()
	return nil
}

func (n *MailNotifier) enqueue(j job) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return false
	}
	select {
	case n.jobs <- j:
		return true
	default:
		return false
	}
}

func (n *MailNotifier) worker() {
	defer n.wg.Done()
	for j := range n.jobs {
		err := n.deliver(j)
		n.metrics.ObserveNotification(j.msg.Template, err)
		if err != nil {
			n.logger.Error("email delivery failed", "to", j.msg.To, "template", j.msg.Template, "error", err)
			continue
		}
		n.logger.Debug("email sent", "to", j.msg.To, "template", j.msg.Template)
	}
}

func (n *MailNotifier) deliver(j job) error {
	sender, err := n.dialer.Dial()
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer sender.Close()

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.cfg.User, n.cfg.FromName)
	m.SetHeader("To", j.msg.To)
	m.SetHeader("Subject", j.msg.Subject)
	m.SetBody("text/html", j.msg.HTML)

	return gomail.Send(sender, m)
}
