package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const DefaultRealtimeURL = "wss://realtime.tickerfeed.dev/socket/websocket"

// ChangeSpec selects a row-change stream on one table, optionally filtered.
// Filter uses the "column=eq.value" form, e.g. "ticker=eq.AAPL".
type ChangeSpec struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Filter string `json:"filter,omitempty"`
}

type joinPayload struct {
	Config struct {
		PostgresChanges []ChangeSpec `json:"postgres_changes"`
	} `json:"config"`
}

type clientMessage struct {
	Topic   string      `json:"topic"`
	Event   string      `json:"event"`
	Ref     string      `json:"ref,omitempty"`
	Payload interface{} `json:"payload"`
}

// Envelope is one frame from the realtime server. Payload stays raw; row
// decoding happens per event type.
type Envelope struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type WSClient struct {
	url  string
	conn *websocket.Conn
}

func NewWSClient(url string) *WSClient {
	if strings.TrimSpace(url) == "" {
		url = DefaultRealtimeURL
	}
	return &WSClient{url: url}
}

func (c *WSClient) Connect(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("ws client is nil")
	}
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return err
	}
	// Change payloads carry full rows including price history; raise the
	// read limit above the default.
	conn.SetReadLimit(1 << 20) // 1MB
	c.conn = conn
	return nil
}

func (c *WSClient) Close(status websocket.StatusCode, reason string) error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close(status, reason)
}

// Join subscribes the connection to the row-change streams in specs.
func (c *WSClient) Join(ctx context.Context, topic string, specs []ChangeSpec) error {
	if c == nil || c.conn == nil {
		return fmt.Errorf("ws not connected")
	}
	var payload joinPayload
	payload.Config.PostgresChanges = specs
	msg := clientMessage{Topic: topic, Event: "phx_join", Ref: "1", Payload: payload}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, data)
}

func (c *WSClient) Read(ctx context.Context) (Envelope, []byte, error) {
	if c == nil || c.conn == nil {
		return Envelope{}, nil, fmt.Errorf("ws not connected")
	}
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return Envelope{}, nil, err
	}
	var env Envelope
	_ = json.Unmarshal(data, &env)
	return env, data, nil
}

func (c *WSClient) heartbeat(ctx context.Context) error {
	if c == nil || c.conn == nil {
		return fmt.Errorf("ws not connected")
	}
	msg := clientMessage{Topic: "phoenix", Event: "heartbeat", Payload: struct{}{}}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, data)
}

type StreamOptions struct {
	URL               string
	Topic             string
	Specs             []ChangeSpec
	HeartbeatInterval time.Duration
	PingTimeout       time.Duration
	BackoffMin        time.Duration
	BackoffMax        time.Duration
	Logger            *zap.Logger
}

// Stream maintains one subscribed connection, reconnecting with exponential
// backoff and jitter until the context is canceled.
type Stream struct {
	opts      StreamOptions
	seenFirst bool
}

func NewStream(opts StreamOptions) *Stream {
	if opts.URL == "" {
		opts.URL = DefaultRealtimeURL
	}
	if opts.Topic == "" {
		opts.Topic = "realtime:public"
	}
	if opts.HeartbeatInterval == 0 {
		opts.HeartbeatInterval = 20 * time.Second
	}
	if opts.PingTimeout == 0 {
		opts.PingTimeout = 5 * time.Second
	}
	if opts.BackoffMin == 0 {
		opts.BackoffMin = 1 * time.Second
	}
	if opts.BackoffMax == 0 {
		opts.BackoffMax = 30 * time.Second
	}
	return &Stream{opts: opts}
}

func (s *Stream) Run(ctx context.Context, onMessage func(Envelope)) error {
	if s == nil {
		return fmt.Errorf("stream is nil")
	}
	backoff := s.opts.BackoffMin
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		client := NewWSClient(s.opts.URL)
		if err := client.Connect(ctx); err != nil {
			if s.opts.Logger != nil {
				s.opts.Logger.Warn("realtime connect failed", zap.Error(err))
			}
			if err := sleepWithJitter(ctx, backoff); err != nil {
				return err
			}
			backoff = nextBackoff(backoff, s.opts.BackoffMax)
			continue
		}
		if err := client.Join(ctx, s.opts.Topic, s.opts.Specs); err != nil {
			if s.opts.Logger != nil {
				s.opts.Logger.Warn("realtime join failed", zap.Error(err))
			}
			_ = client.Close(websocket.StatusInternalError, "join failed")
			if err := sleepWithJitter(ctx, backoff); err != nil {
				return err
			}
			backoff = nextBackoff(backoff, s.opts.BackoffMax)
			continue
		}
		if s.opts.Logger != nil {
			s.opts.Logger.Info("realtime subscribed",
				zap.String("topic", s.opts.Topic), zap.Int("specs", len(s.opts.Specs)))
		}
		backoff = s.opts.BackoffMin

		err := s.consume(ctx, client, onMessage)
		_ = client.Close(websocket.StatusNormalClosure, "reconnect")
		if err == nil || errors.Is(err, context.Canceled) {
			return err
		}
		if err := sleepWithJitter(ctx, backoff); err != nil {
			return err
		}
		backoff = nextBackoff(backoff, s.opts.BackoffMax)
	}
}

func (s *Stream) consume(ctx context.Context, client *WSClient, onMessage func(Envelope)) error {
	if client == nil {
		return fmt.Errorf("ws client is nil")
	}
	heartbeatErr := make(chan error, 1)
	heartbeatCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		ticker := time.NewTicker(s.opts.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-heartbeatCtx.Done():
				heartbeatErr <- heartbeatCtx.Err()
				return
			case <-ticker.C:
				pingCtx, cancelPing := context.WithTimeout(heartbeatCtx, s.opts.PingTimeout)
				err := client.heartbeat(pingCtx)
				cancelPing()
				if err != nil {
					heartbeatErr <- err
					return
				}
			}
		}
	}()

	for {
		select {
		case err := <-heartbeatErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		default:
		}
		env, _, err := client.Read(ctx)
		if err != nil {
			if s.opts.Logger != nil && !errors.Is(err, context.Canceled) {
				s.opts.Logger.Warn("realtime read failed", zap.Error(err))
			}
			return err
		}
		switch env.Event {
		case "phx_reply", "heartbeat":
			continue
		}
		if s.opts.Logger != nil && !s.seenFirst {
			s.seenFirst = true
			s.opts.Logger.Info("realtime first message", zap.String("event", env.Event))
		}
		if onMessage != nil {
			onMessage(env)
		}
	}
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func sleepWithJitter(ctx context.Context, base time.Duration) error {
	if base <= 0 {
		return nil
	}
	jitter := time.Duration(rand.Int63n(int64(base / 2)))
	timer := time.NewTimer(base + jitter)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
