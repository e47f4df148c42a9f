// Package realtime maintains the push channel to the backend: a single
// WebSocket connection with heartbeats, bounded reconnection, a per-type
// subscriber registry, and durable per-entity event history.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smforson1/book-bite-sub000/internal/client/models"
	"github.com/smforson1/book-bite-sub000/internal/client/session"
	"github.com/smforson1/book-bite-sub000/internal/client/storage"
	"github.com/smforson1/book-bite-sub000/internal/common"
	"github.com/smforson1/book-bite-sub000/internal/logging"
	"github.com/smforson1/book-bite-sub000/internal/timex"
)

// Synthetic event types emitted by the client itself, never by the backend.
// EventDisconnected is terminal: it fires exactly once, after the reconnect
// budget is spent, and means the user has to reconnect explicitly.
const (
	EventConnected    = "connected"
	EventDisconnected = "disconnected"

	// EventAny subscribes to every inbound event regardless of type.
	EventAny = "message"
)

// State is the connection lifecycle state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Config carries the push channel tunables. Zero values fall back to
// defaults.
type Config struct {
	URL                  string
	ConnectTimeout       time.Duration
	HeartbeatInterval    time.Duration
	WriteTimeout         time.Duration
	MaxReconnectAttempts int
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
	HistoryLimit         int
}

func (c *Config) withDefaults() {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.MaxReconnectAttempts <= 0 {
		c.MaxReconnectAttempts = 5
	}
	if c.ReconnectBaseDelay <= 0 {
		c.ReconnectBaseDelay = time.Second
	}
	if c.ReconnectMaxDelay <= 0 {
		c.ReconnectMaxDelay = 30 * time.Second
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 50
	}
}

// frame is the inbound wire envelope.
type frame struct {
	Type      string          `json:"type"`
	EntityID  string          `json:"entityId,omitempty"`
	Text      string          `json:"text,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// outbound is the client-to-backend envelope. Each frame type uses its own
// subset of fields; the rest stay omitted.
type outbound struct {
	Type        string `json:"type"`
	OrderID     string `json:"orderId,omitempty"`
	BookingID   string `json:"bookingId,omitempty"`
	RecipientID string `json:"recipientId,omitempty"`
	Message     string `json:"message,omitempty"`
	MessageType string `json:"messageType,omitempty"`
	UserID      string `json:"userId,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// Client is the live-update WebSocket client. Construct with New; a Client
// owns at most one connection at a time.
type Client struct {
	cfg    Config
	store  *storage.Store
	sess   *session.Manager
	log    logging.Logger
	dialer *websocket.Dialer

	closed     atomic.Bool
	background atomic.Bool

	mu    sync.Mutex // guards conn and state
	conn  *websocket.Conn
	state State

	writeMu sync.Mutex

	subMu    sync.RWMutex
	nextSub  int
	subs     map[string]map[int]func(models.UpdateEvent)
	notifier func(models.UpdateEvent)
}

func New(cfg Config, store *storage.Store, sess *session.Manager, log logging.Logger) *Client {
	cfg.withDefaults()
	return &Client{
		cfg:   cfg,
		store: store,
		sess:  sess,
		log:   log.With("component", "realtime"),
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.ConnectTimeout,
		},
		subs: make(map[string]map[int]func(models.UpdateEvent)),
	}
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect opens the push channel. The completed handshake is the open
// confirmation; there is no application-level ack. Connecting while already
// connected is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.mu.Unlock()

	c.closed.Store(false)

	conn, err := c.dial(ctx)
	if err != nil {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		return err
	}

	c.adopt(conn)
	c.emit(models.UpdateEvent{Type: EventConnected, Timestamp: time.Now()})
	return nil
}

// Close shuts the channel down intentionally: no reconnection, no terminal
// disconnected event.
func (c *Client) Close() error {
	c.closed.Store(true)

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(c.cfg.WriteTimeout))
	c.writeMu.Unlock()

	return conn.Close()
}

// Subscribe registers fn for inbound events of the given type (one of the
// models.Event* values, the synthetic EventConnected/EventDisconnected, or
// EventAny for everything). Returns an unsubscribe function.
func (c *Client) Subscribe(eventType string, fn func(models.UpdateEvent)) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	c.nextSub++
	id := c.nextSub
	if c.subs[eventType] == nil {
		c.subs[eventType] = make(map[int]func(models.UpdateEvent))
	}
	c.subs[eventType][id] = fn

	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subs[eventType], id)
	}
}

// SetNotifier installs the hook invoked on top of in-app delivery while the
// app is backgrounded (a local-notification bridge, typically).
func (c *Client) SetNotifier(fn func(models.UpdateEvent)) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.notifier = fn
}

// SetBackgrounded flags whether the app is in the background. Subscribers
// always receive events; while backgrounded the notifier hook fires as well.
func (c *Client) SetBackgrounded(v bool) {
	c.background.Store(v)
}

// TrackOrder asks the backend to stream updates for one order.
// Fire-and-forget: dropped silently when the channel is down.
func (c *Client) TrackOrder(orderID string) {
	_ = c.send(outbound{Type: "track_order", OrderID: orderID})
}

// TrackBooking asks the backend to stream updates for one booking.
func (c *Client) TrackBooking(bookingID string) {
	_ = c.send(outbound{Type: "track_booking", BookingID: bookingID})
}

// SendMessage pushes a chat message to a recipient (order courier, hotel
// front desk). An empty messageType means plain text. Fire-and-forget like
// the trackers.
func (c *Client) SendMessage(recipientID, message, messageType string) {
	if messageType == "" {
		messageType = "text"
	}
	_ = c.send(outbound{
		Type:        "send_message",
		RecipientID: recipientID,
		Message:     message,
		MessageType: messageType,
	})
}

// History returns the persisted update history for one entity, oldest
// first. Available offline.
func (c *Client) History(ctx context.Context, entityID string) []models.UpdateEvent {
	return c.store.EventHistory(ctx, entityID)
}

// dial re-reads the session on every attempt: the token may have rotated
// since the connection dropped.
func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if token := c.sess.Token(ctx); token != "" {
		header.Set(common.AuthTokenHeaderName, "Bearer "+token)
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.endpoint(ctx), header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		var ne net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
			return nil, fmt.Errorf("%w: %v", common.ErrConnectTimeout, err)
		}
		return nil, err
	}
	return conn, nil
}

// endpoint appends the user id and token as query parameters, the address
// form the backend expects for the push channel.
func (c *Client) endpoint(ctx context.Context) string {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return c.cfg.URL
	}

	q := u.Query()
	if user := c.sess.CurrentUser(ctx); user != nil {
		q.Set("userId", user.ID)
	}
	if token := c.sess.Token(ctx); token != "" {
		q.Set("token", token)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// adopt installs conn as the live connection and starts its read and
// heartbeat loops. done is closed when the connection dies, stopping the
// heartbeat.
func (c *Client) adopt(conn *websocket.Conn) {
	done := make(chan struct{})

	c.mu.Lock()
	c.conn = conn
	c.state = StateConnected
	c.mu.Unlock()

	go c.readLoop(conn, done)
	go c.heartbeat(conn, done)

	c.log.Info(context.Background(), "push channel connected", "url", c.cfg.URL)
}

func (c *Client) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			_ = conn.Close()
			if c.closed.Load() {
				return
			}
			c.log.Warn(context.Background(), "push channel dropped", "error", err)
			go c.reconnect()
			return
		}
		c.handleFrame(f)
	}
}

func (c *Client) heartbeat(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// A failed write surfaces as a read error on the same
			// connection, so the read loop owns recovery.
			if err := c.write(conn, outbound{Type: "ping"}); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// reconnect runs the bounded backoff schedule after an unexpected drop.
// Exactly one reconnect runs per drop; exhausting the budget emits the
// terminal disconnected event. A session that ended while the channel was
// down stops the schedule like an intentional Close: no dials, no event.
func (c *Client) reconnect() {
	c.mu.Lock()
	c.conn = nil
	c.state = StateConnecting
	c.mu.Unlock()

	b := newBackoff(c.cfg.ReconnectBaseDelay, c.cfg.ReconnectMaxDelay)

	for b.Attempts() < c.cfg.MaxReconnectAttempts {
		if c.abandoned() {
			return
		}

		delay := b.Next()
		c.log.Info(context.Background(), "reconnecting push channel",
			"attempt", b.Attempts(), "delay", delay)
		time.Sleep(delay)

		if c.abandoned() {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ConnectTimeout)
		conn, err := c.dial(ctx)
		cancel()
		if err != nil {
			c.log.Warn(context.Background(), "reconnect attempt failed",
				"attempt", b.Attempts(), "error", err)
			continue
		}

		c.adopt(conn)
		c.emit(models.UpdateEvent{Type: EventConnected, Timestamp: time.Now()})
		return
	}

	c.mu.Lock()
	c.state = StateDisconnected
	c.mu.Unlock()

	c.log.Error(context.Background(), "push channel gave up reconnecting",
		"attempts", c.cfg.MaxReconnectAttempts)
	c.emit(models.UpdateEvent{
		Type:      EventDisconnected,
		Message:   "connection lost",
		Timestamp: time.Now(),
	})
}

// abandoned reports whether reconnection should stop: the channel was closed
// intentionally, or the user session ended while it was down.
func (c *Client) abandoned() bool {
	if c.closed.Load() {
		return true
	}
	if c.sess.Active(context.Background()) {
		return false
	}

	c.mu.Lock()
	c.state = StateDisconnected
	c.mu.Unlock()
	c.log.Info(context.Background(), "session ended, abandoning reconnect")
	return true
}

func (c *Client) handleFrame(f frame) {
	if f.Type == "pong" || f.Type == "ping" {
		return
	}

	ts, _ := timex.DecodeTime(f.Timestamp)
	ev := models.UpdateEvent{
		Type:      f.Type,
		EntityID:  f.EntityID,
		Message:   f.Text,
		Timestamp: ts,
		Extra:     f.Data,
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	// Status frames carry the payload nested under data.
	if len(f.Data) > 0 {
		var body struct {
			EntityID string `json:"entityId"`
			Status   string `json:"status"`
			Message  string `json:"message"`
		}
		if err := json.Unmarshal(f.Data, &body); err == nil {
			if body.EntityID != "" {
				ev.EntityID = body.EntityID
			}
			ev.Status = body.Status
			if body.Message != "" {
				ev.Message = body.Message
			}
		}
	}

	switch ev.Type {
	case models.EventOrderStatus, models.EventBookingStatus:
		c.persistHistory(ev)
	}

	c.emit(ev)
}

// persistHistory appends ev to its entity's durable history, trimming the
// oldest entries past the configured limit.
func (c *Client) persistHistory(ev models.UpdateEvent) {
	if ev.EntityID == "" {
		return
	}

	ctx := context.Background()
	hist := append(c.store.EventHistory(ctx, ev.EntityID), ev)
	if over := len(hist) - c.cfg.HistoryLimit; over > 0 {
		hist = hist[over:]
	}
	c.store.SaveEventHistory(ctx, ev.EntityID, hist)
}

// emit delivers ev to its type's subscribers and the catch-all set. While
// the app is backgrounded the notifier hook fires on top of the in-app
// delivery. Synthetic lifecycle events never reach the catch-all set or the
// notifier.
func (c *Client) emit(ev models.UpdateEvent) {
	lifecycle := ev.Type == EventConnected || ev.Type == EventDisconnected

	c.subMu.RLock()
	notifier := c.notifier
	fns := make([]func(models.UpdateEvent), 0, len(c.subs[ev.Type])+len(c.subs[EventAny]))
	for _, fn := range c.subs[ev.Type] {
		fns = append(fns, fn)
	}
	if !lifecycle {
		for _, fn := range c.subs[EventAny] {
			fns = append(fns, fn)
		}
	}
	c.subMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}

	if !lifecycle && c.background.Load() && notifier != nil {
		notifier(ev)
	}
}

// send stamps f with the session's user id and writes it when connected.
// Every outbound path is fire-and-forget; the error return exists for tests
// and the logs.
func (c *Client) send(f outbound) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || conn == nil {
		c.log.Debug(context.Background(), "dropping outbound frame, channel down", "type", f.Type)
		return common.ErrNotConnected
	}

	if f.UserID == "" {
		if user := c.sess.CurrentUser(context.Background()); user != nil {
			f.UserID = user.ID
		}
	}
	if f.Timestamp == "" {
		f.Timestamp = timex.EncodeTime(time.Now())
	}

	if err := c.write(conn, f); err != nil {
		c.log.Warn(context.Background(), "failed to send frame", "type", f.Type, "error", err)
		return err
	}
	return nil
}

func (c *Client) write(conn *websocket.Conn, f outbound) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return conn.WriteJSON(f)
}
