package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ctrlterm/ptyproc"
	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
)

// wsMirror mirrors one PtyProcess's byte stream over a WebSocket:
// everything the child writes goes out as binary frames, and every
// frame received from the peer is injected back in as if the local
// user had typed it. Built on nhooyr.io/websocket for the wire
// protocol and cenkalti/backoff for reconnect pacing, so a dropped
// connection resumes on its own rather than killing the session.
type wsMirror struct {
	url   string
	token string
	log   *logrus.Entry

	connMu sync.Mutex
	conn   *websocket.Conn
}

func newWSMirror(url, token string, log *logrus.Entry) *wsMirror {
	return &wsMirror{url: url, token: token, log: log}
}

// Run dials url and reconnects with exponential backoff until ctx is
// canceled. Every frame received from the peer is sent to proc as
// input; Send mirrors proc's output the other way.
func (m *wsMirror) Run(ctx context.Context, proc *ptyproc.PtyProcess) {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 0 // retry forever; ctx cancellation is the only way out

	for {
		if ctx.Err() != nil {
			return
		}

		err := m.connectAndRead(ctx, proc)
		if ctx.Err() != nil {
			return
		}

		delay := b.NextBackOff()
		m.log.WithError(err).WithField("retry_in", delay).Warn("websocket mirror disconnected")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}

// Send writes proc's pty output to the peer as a binary frame. Safe
// to call from any goroutine; silently drops data while disconnected.
func (m *wsMirror) Send(data []byte) {
	m.connMu.Lock()
	conn := m.conn
	m.connMu.Unlock()
	if conn == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageBinary, data); err != nil {
		m.log.WithError(err).Debug("websocket mirror send failed")
	}
}

func (m *wsMirror) setConn(conn *websocket.Conn) {
	m.connMu.Lock()
	m.conn = conn
	m.connMu.Unlock()
}

func (m *wsMirror) connectAndRead(ctx context.Context, proc *ptyproc.PtyProcess) error {
	opts := &websocket.DialOptions{}
	if m.token != "" {
		opts.HTTPHeader = http.Header{"Authorization": []string{"Bearer " + m.token}}
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, m.url, opts)
	if err != nil {
		return err
	}
	defer func() {
		m.setConn(nil)
		conn.CloseNow()
	}()

	m.setConn(conn)
	m.log.WithField("url", m.url).Info("websocket mirror connected")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				conn.Close(websocket.StatusNormalClosure, "shutting down")
				return nil
			}
			return err
		}
		if len(data) > 0 {
			if _, err := proc.Send(data); err != nil {
				m.log.WithError(err).Warn("websocket mirror inject failed")
			}
		}
	}
}
