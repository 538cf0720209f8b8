package notify

import (
	"context"
	"log/slog"
)

// Message is one outbound email.
type Message struct {
	To       string
	Subject  string
	HTML     string
	Template string
}

// Notifier dispatches messages at most once, without retries.
type Notifier interface {
	// Notify performs the transport handshake before returning and delivers in the
	// background. A handshake failure is returned as a notification error.
	Notify(ctx context.Context, msg Message) error
	// NotifyAsync queues msg and never reports failure to the caller.
	NotifyAsync(ctx context.Context, msg Message)
	// Close stops accepting messages and waits for queued ones.
	Close() error
}

// LogNotifier writes messages to the log instead of sending them. It is used when
// mail delivery is disabled.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that only logs.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Message) error {
	n.NotifyAsync(ctx, msg)
	return nil
}

func (n *LogNotifier) NotifyAsync(ctx context.Context, msg Message) {
	n.logger.InfoContext(ctx, "mail delivery disabled, message not sent",
		"to", msg.To,
		"subject", msg.Subject,
		"template", msg.Template,
		"body", msg.HTML,
	)
}

func (n *LogNotifier) Close() error {
	return nil
}
