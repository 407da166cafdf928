package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jinzhu/copier"
)

var (
	ErrNotConnected     = errors.New("realtime: not connected")
	ErrNotReady         = errors.New("realtime: session not ready")
	ErrAlreadyConnected = errors.New("realtime: already connected")
)

// Client owns the persistent connection to the conversational-voice service.
// It translates the vendor event stream into conversation state transitions
// and callbacks, and issues outbound commands.
//
// Session state is mutated only by the read-loop goroutine; other goroutines
// observe it through callbacks or [Client.Snapshot]. A client can be
// reconnected after a disconnect; each Connect starts a fresh session.
type Client struct {
	cfg SessionConfig

	connMu sync.Mutex
	conn   *websocket.Conn

	sessionMu sync.RWMutex
	session   Session

	options ConnectOptions
	closing atomic.Bool
}

func NewClient(cfg SessionConfig) *Client {
	return &Client{
		cfg:     cfg.withDefaults(),
		session: Session{ConnectionState: ConnectionDisconnected, ConversationState: ConversationIdle},
	}
}

// Connect dials the service and starts the receive and keepalive loops. The
// session becomes ready only after the server acknowledges the configuration;
// the ready callback signals that moment.
func (c *Client) Connect(ctx context.Context, opts ...ConnectOption) error {
	options := ConnectOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.connMu.Unlock()
		return ErrAlreadyConnected
	}
	c.connMu.Unlock()

	c.options = options
	c.closing.Store(false)

	c.sessionMu.Lock()
	c.session = Session{ConnectionState: ConnectionConnecting, ConversationState: ConversationIdle}
	c.sessionMu.Unlock()

	header := http.Header{}
	if c.cfg.AccessToken != "" {
		header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		c.sessionMu.Lock()
		c.session.ConnectionState = ConnectionDisconnected
		c.sessionMu.Unlock()
		return fmt.Errorf("failed to open socket connection: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	c.sessionMu.Lock()
	c.session.ConnectionState = ConnectionConnected
	c.sessionMu.Unlock()

	closed := make(chan struct{})
	go c.readLoop(conn, closed)
	go c.pingLoop(conn, closed)

	logger.Info("connected to realtime service", "url", c.cfg.URL)
	return nil
}

// Close tears the connection down. Safe to call concurrently with an
// in-flight send and idempotent.
func (c *Client) Close() error {
	c.closing.Store(true)

	c.connMu.Lock()
	conn := c.conn
	c.conn = nil
	c.connMu.Unlock()

	if conn == nil {
		return nil
	}

	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return conn.Close()
}

// Snapshot returns a deep copy of the current session state.
func (c *Client) Snapshot() Session {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()

	var snapshot Session
	if err := copier.CopyWithOption(&snapshot, &c.session, copier.Option{DeepCopy: true}); err != nil {
		logger.Error("failed to snapshot session", "error", err)
	}
	return snapshot
}

func (c *Client) readLoop(conn *websocket.Conn, closed chan struct{}) {
	defer close(closed)

	liveness := c.cfg.PingInterval + c.cfg.PongTimeout
	_ = conn.SetReadDeadline(time.Now().Add(liveness))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(liveness))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			c.handleDisconnect(conn, err)
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(liveness))

		var envelope Envelope
		if err := json.Unmarshal(msg, &envelope); err != nil {
			logger.Warn("failed to parse message, dropping", "error", err)
			continue
		}
		c.handleEvent(envelope)
	}
}

// pingLoop keeps the transport alive. A missed pong pushes the read deadline
// past its limit, which fails the read loop and tears the session down.
func (c *Client) pingLoop(conn *websocket.Conn, closed chan struct{}) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.cfg.PongTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				logger.Warn("failed to send keepalive ping", "error", err)
				return
			}
		}
	}
}

// handleDisconnect moves the session to disconnected and discards in-flight
// turn state. No automatic reconnection is attempted; that decision belongs
// to the caller.
func (c *Client) handleDisconnect(conn *websocket.Conn, err error) {
	conn.Close()

	c.connMu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.connMu.Unlock()

	c.sessionMu.Lock()
	c.session.ConnectionState = ConnectionDisconnected
	c.session.ActiveTurn = nil
	c.session.AssistantSpeaking = false
	c.session.UserSpeaking = false
	c.sessionMu.Unlock()

	if c.closing.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		c.debug("connection closed")
		return
	}

	logger.Error("connection lost", "error", err)
	if c.options.ErrorCallback != nil {
		c.options.ErrorCallback(fmt.Errorf("connection lost: %w", err))
	}
}

func (c *Client) debug(message string) {
	logger.Debug(message)
	if c.options.DebugCallback != nil {
		c.options.DebugCallback(message)
	}
}
