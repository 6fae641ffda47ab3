// Package events maintains the realtime push channel to the backend.
// A single connection is kept alive with a fixed reconnect backoff; incoming
// messages are decoded strictly and unknown shapes are dropped with a log
// entry instead of being propagated.
package events

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"vpn-client/pkg/logbuf"
	"vpn-client/pkg/model"
)

const defaultRetry = 5 * time.Second

// TokenSource supplies the bearer token for the connection handshake.
type TokenSource interface {
	Token() (string, error)
}

// Envelope is the wire format of a push message.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Handler consumes one decoded envelope. Handlers run on the read loop, one
// message at a time, in arrival order.
type Handler func(Envelope)

// Client maintains a single ws connection to the backend push channel.
type Client struct {
	mu       sync.Mutex
	conn     *websocket.Conn
	endpoint string
	tokens   TokenSource
	handlers map[string][]Handler
	log      *logbuf.Buffer
	retry    time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// NewClient builds a push client for the given ws(s) URL. Returns nil when the
// URL is empty or unparseable; a nil client is a safe no-op.
func NewClient(wsURL string, tokens TokenSource, log *logbuf.Buffer) *Client {
	if wsURL == "" {
		return nil
	}
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	return &Client{
		endpoint: u.String(),
		tokens:   tokens,
		handlers: map[string][]Handler{},
		log:      log,
		retry:    defaultRetry,
		done:     make(chan struct{}),
	}
}

// On registers a handler for a message type. Registration must happen before
// Start.
func (c *Client) On(msgType string, fn Handler) {
	if c == nil || fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[msgType] = append(c.handlers[msgType], fn)
}

// OnSubscriptionUpdated registers a typed handler for subscription_updated
// events. Payloads failing validation are logged and dropped.
func (c *Client) OnSubscriptionUpdated(fn func(model.SubscriptionUpdated)) {
	if c == nil || fn == nil {
		return
	}
	c.On(model.EventSubscriptionUpdated, func(env Envelope) {
		ev, err := model.DecodeSubscriptionUpdated(env.Payload)
		if err != nil {
			c.log.Warning("dropping malformed subscription event", map[string]any{"error": err.Error()})
			return
		}
		fn(ev)
	})
}

// OnNotification registers a typed handler for notification events.
func (c *Client) OnNotification(fn func(model.NotificationEvent)) {
	if c == nil || fn == nil {
		return
	}
	c.On(model.EventNotification, func(env Envelope) {
		ev, err := model.DecodeNotification(env.Payload)
		if err != nil {
			c.log.Warning("dropping malformed notification event", map[string]any{"error": err.Error()})
			return
		}
		fn(ev)
	})
}

// Start launches the connect/read loop.
func (c *Client) Start() {
	if c == nil {
		return
	}
	go c.loop()
}

// Close tears the connection down and stops reconnecting.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() { close(c.done) })
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.mu.Unlock()
}

func (c *Client) loop() {
	for {
		select {
		case <-c.done:
			return
		default:
		}
		header := http.Header{}
		if c.tokens != nil {
			if token, err := c.tokens.Token(); err == nil && token != "" {
				header.Set("Authorization", "Bearer "+token)
			}
		}
		conn, resp, err := websocket.DefaultDialer.Dial(c.endpoint, header)
		if err != nil {
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			c.log.Warning("push channel dial failed", map[string]any{"error": err.Error(), "status": status})
			if !c.sleep() {
				return
			}
			continue
		}
		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		c.log.Info("push channel connected", nil)
		c.readLoop(conn)
		c.log.Info("push channel disconnected, retrying", map[string]any{"retry": c.retry.String()})
		if !c.sleep() {
			return
		}
	}
}

func (c *Client) sleep() bool {
	select {
	case <-c.done:
		return false
	case <-time.After(c.retry):
		return true
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer conn.Close()
	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		c.dispatch(env)
	}
}

// dispatch routes one envelope to its handlers, synchronously and in
// registration order. Untyped and unhandled messages are dropped with a log.
func (c *Client) dispatch(env Envelope) {
	if env.Type == "" {
		c.log.Warning("dropping push message without type", nil)
		return
	}
	c.mu.Lock()
	handlers := append([]Handler(nil), c.handlers[env.Type]...)
	c.mu.Unlock()
	if len(handlers) == 0 {
		c.log.Debug("no handler for push message", map[string]any{"type": env.Type})
		return
	}
	for _, h := range handlers {
		h(env)
	}
}
