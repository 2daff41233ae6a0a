package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/nanchess/nanchess/internal/chess"
)

const (
	// Reconnection parameters
	initialReconnectDelay  = 1 * time.Second
	maxReconnectDelay      = 1 * time.Minute
	reconnectBackoffFactor = 2

	// WebSocket parameters
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
	dialTimeout  = 10 * time.Second
)

// Chooser picks the opponent's move for a position. *Random implements it.
type Chooser interface {
	Choose(chess.Snapshot) (chess.ActionCode, bool)
}

// Remote plays the opponent for a nanchess server over its HTTP API. It
// follows the /ws event stream and posts to /api/actions whenever the
// opponent is to move.
type Remote struct {
	baseURL    string
	token      string
	chooser    Chooser
	httpClient *http.Client
	dialer     *websocket.Dialer
	logger     zerolog.Logger

	mu             sync.RWMutex
	conn           *websocket.Conn
	connected      bool
	reconnectDelay time.Duration
	initialDelay   time.Duration
}

// RemoteOption configures a Remote
type RemoteOption func(*Remote)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) {
		r.httpClient = c
	}
}

// WithRemoteLogger sets a custom logger
func WithRemoteLogger(logger zerolog.Logger) RemoteOption {
	return func(r *Remote) {
		r.logger = logger
	}
}

// WithInitialReconnectDelay sets the initial reconnect delay
func WithInitialReconnectDelay(delay time.Duration) RemoteOption {
	return func(r *Remote) {
		r.initialDelay = delay
	}
}

// NewRemote returns an agent for the server at baseURL ("http://host:port")
// that authenticates with token.
func NewRemote(baseURL, token string, chooser Chooser, opts ...RemoteOption) *Remote {
	r := &Remote{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		chooser:      chooser,
		httpClient:   http.DefaultClient,
		dialer:       websocket.DefaultDialer,
		logger:       zerolog.Nop(),
		initialDelay: initialReconnectDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.reconnectDelay = r.initialDelay
	return r
}

// IsConnected returns whether the event stream is open
func (r *Remote) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connected
}

// Run keeps the event stream open, reconnecting with exponential backoff,
// until ctx is cancelled.
func (r *Remote) Run(ctx context.Context) error {
	for {
		if err := r.connect(ctx); err != nil {
			r.logger.Error().Err(err).Msg("Failed to connect to event stream")
		} else if err := r.listen(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error().Err(err).Msg("Event stream closed")
		}
		if err := r.waitReconnect(ctx); err != nil {
			return err
		}
	}
}

func (r *Remote) streamURL() string {
	u := r.baseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}

func (r *Remote) connect(ctx context.Context) error {
	url := r.streamURL()
	r.logger.Info().Str("url", url).Msg("Connecting to event stream")

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := r.dialer.DialContext(dialCtx, url, nil)
	if err != nil {
		return fmt.Errorf("websocket dial failed: %w", err)
	}

	r.mu.Lock()
	r.conn = conn
	r.connected = true
	r.reconnectDelay = r.initialDelay
	r.mu.Unlock()

	r.logger.Info().Msg("Connected to event stream")
	return nil
}

// streamMessage covers both the greeting ({"type":"status","status":{...}})
// and session events ({"type":"board","board":{...}}).
type streamMessage struct {
	Type   string          `json:"type"`
	Board  *chess.Snapshot `json:"board"`
	Status *struct {
		Board chess.Snapshot `json:"board"`
	} `json:"status"`
}

func (r *Remote) listen(ctx context.Context) error {
	r.mu.RLock()
	conn := r.conn
	r.mu.RUnlock()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	go r.pingLoop(conn, done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("websocket read error: %w", err)
		}

		var msg streamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			r.logger.Error().Err(err).Msg("Error decoding event")
			continue
		}
		switch {
		case msg.Type == "status" && msg.Status != nil:
			r.handle(ctx, msg.Status.Board)
		case msg.Type == "board" && msg.Board != nil:
			r.handle(ctx, *msg.Board)
		}
	}
}

func (r *Remote) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeTimeout)); err != nil {
				r.logger.Error().Err(err).Msg("Ping failed")
				return
			}
		}
	}
}

func (r *Remote) handle(ctx context.Context, snap chess.Snapshot) {
	if snap.State != chess.StatePlaying || snap.Turn != snap.PlayerColor.Other() {
		return
	}
	code, ok := r.chooser.Choose(snap)
	if !ok {
		r.logger.Debug().Int("move", snap.MoveNumber).Msg("no legal move")
		return
	}
	if err := r.Submit(ctx, code); err != nil {
		r.logger.Warn().Err(err).Uint32("code", uint32(code)).Msg("action rejected")
	}
}

var ErrRejected = errors.New("action rejected by server")

// Submit posts one action code.
func (r *Remote) Submit(ctx context.Context, code chess.ActionCode) error {
	body, err := json.Marshal(map[string]uint32{"code": uint32(code)})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/actions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.token)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post action: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: %s", ErrRejected, resp.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}

func (r *Remote) waitReconnect(ctx context.Context) error {
	r.mu.Lock()
	r.connected = false
	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}

	// Get current delay before updating
	delay := r.reconnectDelay

	// Exponential backoff
	r.reconnectDelay = time.Duration(float64(r.reconnectDelay) * reconnectBackoffFactor)
	if r.reconnectDelay > maxReconnectDelay {
		r.reconnectDelay = maxReconnectDelay
	}
	r.mu.Unlock()

	r.logger.Info().Str("delay", delay.String()).Msg("Waiting before reconnect")

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
