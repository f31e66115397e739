package broadcast

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/cheese-engine/internal/obslog"
)

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "disconnected"
	}
}

// Frame is one engine output line as sent to observers.
type Frame struct {
	Type string `json:"type"`
	Line string `json:"line"`
	TS   int64  `json:"ts"`
}

const (
	defaultQueue = 256
	dialTimeout  = 5 * time.Second
	writeTimeout = 2 * time.Second
)

// Mirror copies engine output to a websocket observer. Publishing never
// blocks; lines are dropped while the queue is full or the peer is away.
type Mirror struct {
	url   string
	queue chan string
	state atomic.Int32

	dropped atomic.Uint64

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func New(wsURL string) *Mirror {
	m := &Mirror{
		url:    wsURL,
		queue:  make(chan string, defaultQueue),
		stopCh: make(chan struct{}),
	}
	m.wg.Add(1)
	go m.run()
	return m
}

func (m *Mirror) State() State { return State(m.state.Load()) }

func (m *Mirror) Dropped() uint64 { return m.dropped.Load() }

// Publish queues one output line.
func (m *Mirror) Publish(line string) {
	if m == nil {
		return
	}
	line = strings.TrimRight(line, "\n")
	if line == "" {
		return
	}
	select {
	case <-m.stopCh:
		return
	default:
	}
	select {
	case m.queue <- line:
	default:
		m.dropped.Add(1)
	}
}

func (m *Mirror) run() {
	defer m.wg.Done()
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-m.stopCh
		cancel()
	}()

	var conn *websocket.Conn
	attempt := 0
	defer func() {
		if conn != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "close")
		}
		m.state.Store(int32(StateClosed))
	}()

	for {
		var line string
		select {
		case <-m.stopCh:
			m.drain(rootCtx, conn)
			return
		case line = <-m.queue:
		}

		if conn == nil {
			m.state.Store(int32(StateConnecting))
			c, err := m.dial(rootCtx)
			if err != nil {
				attempt++
				m.state.Store(int32(StateDisconnected))
				m.dropped.Add(1)
				obslog.L().Debug("broadcast_dial_failed", zap.String("url", m.url), zap.Int("attempt", attempt), zap.Error(err))
				if !m.sleep(backoffDuration(attempt)) {
					return
				}
				continue
			}
			conn = c
			attempt = 0
			m.state.Store(int32(StateConnected))
		}

		if err := m.write(rootCtx, conn, line); err != nil {
			m.dropped.Add(1)
			obslog.L().Debug("broadcast_write_failed", zap.Error(err))
			_ = conn.Close(websocket.StatusGoingAway, "reconnect")
			conn = nil
			m.state.Store(int32(StateDisconnected))
		}
	}
}

// drain flushes whatever is already queued before shutdown.
func (m *Mirror) drain(ctx context.Context, conn *websocket.Conn) {
	if conn == nil {
		return
	}
	for {
		select {
		case line := <-m.queue:
			if err := m.write(context.WithoutCancel(ctx), conn, line); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (m *Mirror) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, m.url, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	return conn, err
}

func (m *Mirror) write(ctx context.Context, conn *websocket.Conn, line string) error {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(wctx, conn, Frame{Type: "uci", Line: line, TS: time.Now().UnixMilli()})
}

func (m *Mirror) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-m.stopCh:
		return false
	case <-t.C:
		return true
	}
}

// Close stops the writer after flushing queued lines, or when ctx expires.
func (m *Mirror) Close(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.stopOnce.Do(func() { close(m.stopCh) })
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}
