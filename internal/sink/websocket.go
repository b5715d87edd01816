package sink

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"me_msggen/internal/domain"

	"github.com/gorilla/websocket"
)

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
	baseDelay        = 200 * time.Millisecond
	maxDelay         = 5 * time.Second
)

// WebSocketSink streams each record as a text frame to an engine gateway.
type WebSocketSink struct {
	url     string
	conn    *websocket.Conn
	writeMu sync.Mutex
	count   int
}

// DialWebSocketSink connects to url, retrying up to retries times with backoff.
func DialWebSocketSink(ctx context.Context, url string, retries int) (*WebSocketSink, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	header := make(http.Header)
	header.Set("User-Agent", "msggen")

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay := backoff(attempt - 1)
			slog.Warn("Gateway dial failed, retrying",
				slog.String("url", url), slog.Int("attempt", attempt), slog.Duration("delay", delay), slog.Any("error", lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		conn, _, err := dialer.DialContext(ctx, url, header)
		if err == nil {
			slog.Info("Gateway connected", slog.String("url", url))
			return &WebSocketSink{url: url, conn: conn}, nil
		}
		lastErr = err
	}
	return nil, &domain.OutputError{Target: url, Err: fmt.Errorf("%w: %v", domain.ErrOutputUnwritable, lastErr)}
}

// backoff doubles from baseDelay up to maxDelay
func backoff(retry int) time.Duration {
	if retry > 16 {
		return maxDelay
	}
	d := baseDelay << retry
	if d <= 0 || d > maxDelay {
		return maxDelay
	}
	return d
}

// Write sends one record
func (s *WebSocketSink) Write(msg *domain.Message) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(Format(msg))); err != nil {
		return &domain.OutputError{Target: s.url, Err: err}
	}
	s.count++
	return nil
}

// Count returns the number of records sent
func (s *WebSocketSink) Count() int {
	return s.count
}

// Close sends a close frame and closes the connection
func (s *WebSocketSink) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	deadline := time.Now().Add(writeTimeout)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"), deadline)
	return s.conn.Close()
}
