package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-dimmer/pkg/protocol"
	"github.com/teslashibe/go-dimmer/pkg/target"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 5 * time.Second

	// handshakeTimeout bounds each dial attempt
	handshakeTimeout = 5 * time.Second

	// maxMessageSize allows a 1080p RGBA frame in base64
	maxMessageSize = 16 << 20
)

// ErrClosed means the link was stopped.
var ErrClosed = errors.New("sink: host link closed")

// Handler receives every non-ping message from the host.
type Handler func(msg *protocol.Message)

// Link is one websocket connection to the rendering host. Dimming values for
// all targets share it; per target only the newest undelivered value is kept.
// The host may send poses, transforms, commands and frames back.
type Link struct {
	url     string
	session string
	header  http.Header
	retry   time.Duration
	logger  *slog.Logger
	handler Handler

	notify  chan struct{}
	replies chan *protocol.Message

	mu        sync.Mutex
	pending   map[string]float64
	status    *protocol.StatusData
	connected bool
	closed    bool
	sent      uint64
	dropped   uint64
	received  uint64
}

// NewLink creates a link that dials url when Run is called.
func NewLink(url string, logger *slog.Logger) *Link {
	if logger == nil {
		logger = slog.Default()
	}
	session := uuid.NewString()
	return &Link{
		url:     url,
		session: session,
		header:  make(http.Header),
		retry:   time.Second,
		logger:  logger.With("sink", "link", "session", session),
		notify:  make(chan struct{}, 1),
		replies: make(chan *protocol.Message, 8),
		pending: make(map[string]float64),
	}
}

// SetRetry changes the reconnect delay.
func (l *Link) SetRetry(d time.Duration) {
	l.retry = d
}

// OnMessage sets the handler for host messages. Call before Run.
func (l *Link) OnMessage(h Handler) {
	l.handler = h
}

// Session returns the id sent with every dimming message.
func (l *Link) Session() string {
	return l.session
}

// Output returns the dimming output for one target.
func (l *Link) Output(name string) target.Output {
	return Func(func(value float64) error {
		return l.queue(name, value)
	})
}

func (l *Link) queue(name string, value float64) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if _, ok := l.pending[name]; ok {
		l.dropped++
	}
	l.pending[name] = value
	l.mu.Unlock()

	l.wake()
	return nil
}

// PublishStatus queues the dimmer label and debug text for the host,
// replacing any undelivered status.
func (l *Link) PublishStatus(label, text string) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.status = &protocol.StatusData{Label: label, Text: text}
	l.mu.Unlock()

	l.wake()
}

func (l *Link) wake() {
	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// Run dials the host, reconnecting every retry interval on failure, and
// delivers queued values until ctx is cancelled.
func (l *Link) Run(ctx context.Context) error {
	defer l.close()

	for {
		conn, err := l.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.logger.Debug("rendering host unavailable", "url", l.url, "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(l.retry):
				continue
			}
		}

		l.logger.Info("rendering host connected", "url", l.url)
		l.setConnected(true)
		err = l.pump(ctx, conn)
		conn.Close()
		l.setConnected(false)
		if ctx.Err() != nil {
			return nil
		}
		l.logger.Warn("rendering host disconnected", "error", err)
	}
}

func (l *Link) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, l.url, l.header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", l.url, err)
	}
	conn.SetReadLimit(maxMessageSize)
	return conn, nil
}

func (l *Link) pump(ctx context.Context, conn *websocket.Conn) error {
	readErr := make(chan error, 1)
	go l.readLoop(conn, readErr)

	// deliver anything queued while disconnected
	l.wake()

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return ctx.Err()

		case err := <-readErr:
			return err

		case msg := <-l.replies:
			if err := l.write(conn, msg); err != nil {
				return err
			}

		case <-l.notify:
			if err := l.flush(conn); err != nil {
				return err
			}
		}
	}
}

func (l *Link) readLoop(conn *websocket.Conn, readErr chan<- error) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			readErr <- err
			return
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			l.logger.Debug("ignoring malformed host message", "error", err)
			continue
		}

		l.mu.Lock()
		l.received++
		l.mu.Unlock()

		if msg.Type == protocol.TypePing {
			l.pong(msg)
			continue
		}
		if l.handler != nil {
			l.handler(msg)
		}
	}
}

func (l *Link) pong(ping *protocol.Message) {
	data, err := ping.GetPingData()
	if err != nil {
		return
	}
	reply, err := protocol.NewPongMessage(data.ID, ping.Timestamp, time.Now().UnixMilli())
	if err != nil {
		return
	}
	select {
	case l.replies <- reply:
	default:
	}
}

// flush sends the status first, then dimming values in target order.
func (l *Link) flush(conn *websocket.Conn) error {
	l.mu.Lock()
	status := l.status
	l.status = nil
	values := l.pending
	l.pending = make(map[string]float64, len(values))
	l.mu.Unlock()

	if status != nil {
		msg, err := protocol.NewStatusMessage(status.Label, status.Text)
		if err != nil {
			return err
		}
		if err := l.write(conn, msg); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		msg, err := protocol.NewDimmingMessage(l.session, name, DimmingParam, values[name])
		if err != nil {
			return err
		}
		if err := l.write(conn, msg); err != nil {
			return err
		}
		l.mu.Lock()
		l.sent++
		l.mu.Unlock()
	}
	return nil
}

func (l *Link) write(conn *websocket.Conn, msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (l *Link) setConnected(v bool) {
	l.mu.Lock()
	l.connected = v
	l.mu.Unlock()
}

func (l *Link) close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

// LinkStats are delivery counters.
type LinkStats struct {
	Session   string `json:"session"`
	URL       string `json:"url"`
	Connected bool   `json:"connected"`
	Sent      uint64 `json:"sent"`
	Dropped   uint64 `json:"dropped"`
	Received  uint64 `json:"received"`
}

// Stats returns delivery counters.
func (l *Link) Stats() LinkStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LinkStats{
		Session:   l.session,
		URL:       l.url,
		Connected: l.connected,
		Sent:      l.sent,
		Dropped:   l.dropped,
		Received:  l.received,
	}
}
