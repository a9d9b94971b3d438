// Package transport maintains the client's WebSocket link to the forum
// backend. It dials, reads frames, classifies them by type, and publishes
// the raw payloads onto the bus. Connection loss that the user did not ask
// for triggers a single delayed reconnect attempt; a normal closure does not.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/ckosmato/Real-Time-Forum/internal/pubsub"
)

// ErrNotConnected is returned by Send when no live connection exists.
// Callers surface it to the user; there is no send queue and no retry.
var ErrNotConnected = errors.New("transport: not connected")

const sendTimeout = 10 * time.Second

// TokenFunc supplies the current session token at dial time, so a transport
// created before login still dials with fresh credentials.
type TokenFunc func() string

// Transport is the WebSocket client. All methods are safe for concurrent use.
type Transport struct {
	wsURL          string
	token          TokenFunc
	publisher      pubsub.Publisher
	httpClient     *http.Client
	reconnectDelay time.Duration
	log            *slog.Logger

	mu               sync.Mutex
	conn             *websocket.Conn
	connected        bool
	dialing          bool
	closing          bool
	reconnectPending bool
}

// Option configures a Transport.
type Option func(*Transport)

// WithReconnectDelay overrides the delay before a reconnect attempt.
func WithReconnectDelay(d time.Duration) Option {
	return func(t *Transport) { t.reconnectDelay = d }
}

// WithHTTPClient sets the client used for the WebSocket handshake. Pass the
// session's client so the handshake carries the session cookie.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) { t.httpClient = c }
}

// New creates a disconnected transport. Call Connect to dial.
func New(wsURL string, token TokenFunc, publisher pubsub.Publisher, opts ...Option) *Transport {
	t := &Transport{
		wsURL:          wsURL,
		token:          token,
		publisher:      publisher,
		httpClient:     http.DefaultClient,
		reconnectDelay: 3 * time.Second,
		log:            slog.Default().With("service", "transport"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Connected reports whether a live connection exists right now.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Connect dials the backend. Calling it while a connection is live or a dial
// is in flight is a no-op. A failed dial counts as a lost connection and
// schedules a reconnect.
func (t *Transport) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.connected || t.dialing {
		t.mu.Unlock()
		return nil
	}
	t.dialing = true
	t.closing = false
	t.mu.Unlock()

	dialURL, err := t.dialURL()
	if err != nil {
		t.mu.Lock()
		t.dialing = false
		t.mu.Unlock()
		return err
	}

	conn, _, err := websocket.Dial(ctx, dialURL, &websocket.DialOptions{
		HTTPClient: t.httpClient,
	})
	if err != nil {
		t.mu.Lock()
		t.dialing = false
		t.mu.Unlock()
		t.log.Error("Failed to dial websocket", "error", err)
		t.scheduleReconnect(ctx)
		return err
	}

	t.mu.Lock()
	if t.closing {
		// Close() won the race against the dial.
		t.dialing = false
		t.mu.Unlock()
		return conn.Close(websocket.StatusNormalClosure, "client logout")
	}
	t.conn = conn
	t.connected = true
	t.dialing = false
	t.mu.Unlock()

	t.log.Info("Websocket connected", "url", t.wsURL)
	go t.readLoop(ctx, conn)
	return nil
}

// dialURL appends the session token as a query parameter. The server reads
// it when the cookie is absent, which happens with some WebSocket clients.
func (t *Transport) dialURL() (string, error) {
	u, err := url.Parse(t.wsURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("session_id", t.token())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Send marshals the message and writes it as a text frame. When no
// connection is live it fails immediately with ErrNotConnected; the message
// is not queued.
func (t *Transport) Send(msg any) error {
	t.mu.Lock()
	conn := t.conn
	connected := t.connected
	t.mu.Unlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}

// Close shuts the connection down deliberately. A close initiated here never
// triggers a reconnect.
func (t *Transport) Close() error {
	t.mu.Lock()
	t.closing = true
	conn := t.conn
	t.conn = nil
	t.connected = false
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close(websocket.StatusNormalClosure, "client logout")
}

func (t *Transport) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.mu.Lock()
			if t.conn == conn {
				t.conn = nil
				t.connected = false
			}
			closing := t.closing
			t.mu.Unlock()

			status := websocket.CloseStatus(err)
			if closing || status == websocket.StatusNormalClosure {
				t.log.Info("Websocket closed", "status", status)
				return
			}

			t.log.Warn("Websocket connection lost", "status", status, "error", err)
			t.scheduleReconnect(ctx)
			return
		}
		t.dispatch(ctx, data)
	}
}

// dispatch classifies the frame by its type field and publishes the raw
// bytes. Unparseable frames are dropped with a log line; the read loop
// stays up.
func (t *Transport) dispatch(ctx context.Context, data []byte) {
	var frame struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.log.Error("Dropping malformed frame", "error", err)
		return
	}

	topic := TopicFor(frame.Type)
	if err := t.publisher.Publish(ctx, pubsub.Message{
		Topic:   topic,
		Payload: data,
	}); err != nil {
		t.log.Error("Failed to publish frame", "topic", topic, "error", err)
	}
}

// scheduleReconnect arms a single delayed Connect. Repeated losses while an
// attempt is already pending collapse into that one attempt.
func (t *Transport) scheduleReconnect(ctx context.Context) {
	t.mu.Lock()
	if t.closing || t.reconnectPending {
		t.mu.Unlock()
		return
	}
	t.reconnectPending = true
	t.mu.Unlock()

	t.log.Info("Scheduling reconnect", "delay", t.reconnectDelay)
	time.AfterFunc(t.reconnectDelay, func() {
		t.mu.Lock()
		t.reconnectPending = false
		closing := t.closing
		t.mu.Unlock()

		if closing || ctx.Err() != nil {
			return
		}
		if err := t.Connect(ctx); err != nil {
			t.log.Warn("Reconnect attempt failed", "error", err)
		}
	})
}
