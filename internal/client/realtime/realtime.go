// Package realtime subscribes to the backend's websocket push channel.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"hobbyhub/internal/client/api"
	hub "hobbyhub/internal/realtime"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const handshakeTimeout = 10 * time.Second

// Notification is one pushed message.
type Notification = hub.Notification

// SocketURL turns an API base URL (http://host/api) into its websocket endpoint (ws://host/api/ws).
func SocketURL(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", errors.Wrapf(err, "parse base url %q", baseURL)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", errors.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path += "/ws"
	return u.String(), nil
}

// Subscription delivers notifications until its context ends, Close is called or the socket drops.
type Subscription struct {
	conn     *websocket.Conn
	messages chan Notification

	closeOnce sync.Once
	closed    chan struct{}

	mu  sync.Mutex
	err error
}

// Dial connects to wsURL, authenticating with token.
func Dial(ctx context.Context, wsURL, token string) (*Subscription, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parse socket url %q", wsURL)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return nil, &api.Error{
				Status:        resp.StatusCode,
				Message:       "websocket handshake rejected: " + resp.Status,
				IsServerError: resp.StatusCode >= http.StatusInternalServerError,
				Err:           err,
			}
		}
		return nil, &api.Error{
			Message:        "websocket dial failed: " + err.Error(),
			Code:           api.CodeNetworkError,
			IsNetworkError: true,
			Err:            err,
		}
	}

	s := &Subscription{
		conn:     conn,
		messages: make(chan Notification, 16),
		closed:   make(chan struct{}),
	}
	go s.watch(ctx)
	go s.read()
	return s, nil
}

// Messages is closed when the subscription ends; Err then explains why.
func (s *Subscription) Messages() <-chan Notification { return s.messages }

// Err returns the read error that ended the subscription, or nil after a normal close.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the subscription.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		err = s.conn.Close()
	})
	return err
}

func (s *Subscription) watch(ctx context.Context) {
	select {
	case <-ctx.Done():
		_ = s.Close()
	case <-s.closed:
	}
}

func (s *Subscription) read() {
	defer close(s.messages)
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closed:
			default:
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.mu.Lock()
					s.err = err
					s.mu.Unlock()
				}
				_ = s.Close()
			}
			return
		}
		var n Notification
		if err := json.Unmarshal(raw, &n); err != nil {
			continue
		}
		select {
		case s.messages <- n:
		case <-s.closed:
			return
		}
	}
}
