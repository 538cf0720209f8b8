package notify

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"showbiz/internal/errors"
)

type fakeSender struct {
	d      *fakeDialer
	closed bool
}

func (s *fakeSender) Send(from string, to []string, msg io.WriterTo) error {
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return err
	}
	s.d.mu.Lock()
	s.d.sending++
	hold := s.d.sendBlock
	s.d.mu.Unlock()
	if hold != nil {
		<-hold
	}

	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if s.d.sendErr != nil {
		return s.d.sendErr
	}
	s.d.sent = append(s.d.sent, sentMail{from: from, to: to, raw: buf.String()})
	return nil
}

func (s *fakeSender) Close() error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.d.open--
	}
	return nil
}

type sentMail struct {
	from string
	to   []string
	raw  string
}

type fakeDialer struct {
	mu      sync.Mutex
	dialErr error
	sendErr error
	dials   int
	open    int
	sending int
	sent    []sentMail
	block   chan struct{}
	// sendBlock holds every Send until closed.
	sendBlock chan struct{}
}

func (d *fakeDialer) Dial() (gomail.SendCloser, error) {
	d.mu.Lock()
	d.dials++
	err := d.dialErr
	block := d.block
	d.mu.Unlock()
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.open++
	d.mu.Unlock()
	return &fakeSender{d: d}, nil
}

func (d *fakeDialer) snapshot() (dials, open, sending int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials, d.open, d.sending
}

func (d *fakeDialer) sentCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

func testConfig() MailConfig {
	return MailConfig{Host: "smtp.test", Port: 587, User: "noreply@showbiz.test", Pass: "secret", FromName: "Showbiz App", Workers: 1, QueueSize: 4}
}

func TestNewMailNotifier_RequiresCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.Pass = ""

	_, err := NewMailNotifier(cfg, nil, nil)
	require.Error(t, err)
	assert.Equal(t, errors.KindConfig, errors.KindOf(err))
}

func TestMailNotifier_NotifyDelivers(t *testing.T) {
	d := &fakeDialer{}
	n := newMailNotifier(testConfig(), d, nil, nil)

	msg, err := OTPMessage("jane@x.com", "Jane", "talent", "123456")
	require.NoError(t, err)
	require.NoError(t, n.Notify(context.Background(), msg))
	require.NoError(t, n.Close())

	require.Equal(t, 1, d.sentCount())
	dials, open, _ := d.snapshot()
	assert.Equal(t, 2, dials, "handshake check plus delivery")
	assert.Zero(t, open)
	assert.Equal(t, []string{"jane@x.com"}, d.sent[0].to)
	assert.Contains(t, d.sent[0].raw, "123456")
	assert.Contains(t, d.sent[0].raw, "Showbiz App")
}

func TestMailNotifier_QueuedMessagesHoldNoSession(t *testing.T) {
	d := &fakeDialer{sendBlock: make(chan struct{})}
	n := newMailNotifier(testConfig(), d, nil, nil)
	ctx := context.Background()

	// the single worker is stuck delivering the first message
	require.NoError(t, n.Notify(ctx, Message{To: "a@x.com"}))
	require.Eventually(t, func() bool {
		_, _, sending := d.snapshot()
		return sending == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, n.Notify(ctx, Message{To: "b@x.com"}))
	require.NoError(t, n.Notify(ctx, Message{To: "c@x.com"}))
	_, open, _ := d.snapshot()
	assert.Equal(t, 1, open, "only the delivering worker holds a session")

	close(d.sendBlock)
	require.NoError(t, n.Close())
	assert.Equal(t, 3, d.sentCount())
	dials, open, _ := d.snapshot()
	assert.Equal(t, 6, dials)
	assert.Zero(t, open)
}

func TestMailNotifier_HandshakeFailure(t *testing.T) {
	d := &fakeDialer{dialErr: stderrors.New("connection refused")}
	n := newMailNotifier(testConfig(), d, nil, nil)
	defer n.Close()

	err := n.Notify(context.Background(), Message{To: "jane@x.com", Template: TemplateOTP})
	require.Error(t, err)
	assert.Equal(t, errors.KindNotification, errors.KindOf(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMailNotifier_AsyncFailureIsSwallowed(t *testing.T) {
	d := &fakeDialer{sendErr: stderrors.New("mailbox unavailable")}
	n := newMailNotifier(testConfig(), d, nil, nil)

	n.NotifyAsync(context.Background(), Message{To: "jane@x.com", Template: TemplateStatus})
	require.NoError(t, n.Close())
	assert.Equal(t, 0, d.sentCount())
	assert.Equal(t, 1, d.dials)
}

func TestMailNotifier_QueueFull(t *testing.T) {
	d := &fakeDialer{block: make(chan struct{})}
	cfg := testConfig()
	cfg.QueueSize = 1
	n := newMailNotifier(cfg, d, nil, nil)

	// the worker takes the first job and blocks dialing, the second fills the queue
	n.NotifyAsync(context.Background(), Message{To: "a@x.com"})
	require.Eventually(t, func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.dials == 1
	}, time.Second, 5*time.Millisecond)
	n.NotifyAsync(context.Background(), Message{To: "b@x.com"})
	n.NotifyAsync(context.Background(), Message{To: "c@x.com"})

	close(d.block)
	require.NoError(t, n.Close())
	assert.Equal(t, 2, d.sentCount())
}

func TestMailNotifier_ClosedRejects(t *testing.T) {
	d := &fakeDialer{}
	n := newMailNotifier(testConfig(), d, nil, nil)
	require.NoError(t, n.Close())
	require.NoError(t, n.Close())

	err := n.Notify(context.Background(), Message{To: "a@x.com"})
	assert.Equal(t, errors.KindNotification, errors.KindOf(err))
}

func TestTemplates(t *testing.T) {
	reset, err := ResetMessage("a@x.com", "Jane", "424242", 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, TemplateReset, reset.Template)
	assert.Contains(t, reset.HTML, "424242")
	assert.Contains(t, reset.HTML, "10 minutes")

	status, err := StatusMessage("a@x.com", "<b>Jane</b>", "approved")
	require.NoError(t, err)
	assert.Contains(t, status.HTML, "approved")
	assert.False(t, strings.Contains(status.HTML, "<b>Jane</b>"), "names are escaped")
}
