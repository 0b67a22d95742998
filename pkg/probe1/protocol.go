// Package probe1 implements the probe1 latency protocol: the client sends
// {"type":"ping","timestamp":t} messages at a fixed interval and the server
// answers each of them with {"type":"pong","timestamp":t}. The round-trip
// time is the difference between the time an echo is received and the
// timestamp it carries.
package probe1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/erebus-edge/edgeprobe/internal/metrics"
	"github.com/erebus-edge/edgeprobe/internal/samples"
	"github.com/erebus-edge/edgeprobe/pkg/probe1/model"
	"github.com/erebus-edge/edgeprobe/pkg/probe1/spec"
	"github.com/gorilla/websocket"
)

var (
	// ErrSend is returned by SenderLoop when a probe cannot be written.
	ErrSend = errors.New("failed to send probe")

	// ErrMalformed means an inbound payload is not a valid probe1 message.
	ErrMalformed = errors.New("malformed message")
	// ErrNotEcho means an inbound message is not of type "pong".
	ErrNotEcho = errors.New("not an echo")
	// ErrNoTimestamp means an echo carries no timestamp.
	ErrNoTimestamp = errors.New("echo without timestamp")
)

// Conn is the message-oriented connection used by the protocol.
// *websocket.Conn implements it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Protocol is the client side of the probe1 protocol. SenderLoop and
// ReceiverLoop are meant to run concurrently, each in its own goroutine.
type Protocol struct {
	conn   Conn
	store  *samples.Store
	flight *inflight

	interval time.Duration
	now      func() time.Time

	probesSent     atomic.Int64
	echoesReceived atomic.Int64
	discarded      atomic.Int64

	closeOnce sync.Once
	closeErr  error
}

// New returns a Protocol that sends probes over conn and appends measured
// round-trip times to store. Interval and probe timeout are set to their
// defaults.
func New(conn Conn, store *samples.Store) *Protocol {
	return &Protocol{
		conn:     conn,
		store:    store,
		flight:   newInflight(spec.DefaultProbeTimeout),
		interval: spec.DefaultInterval,
		now:      time.Now,
	}
}

// SetInterval sets the time between two probes.
func (p *Protocol) SetInterval(d time.Duration) {
	if d > 0 {
		p.interval = d
	}
}

// SetProbeTimeout sets how long a probe may wait for its echo before it is
// counted as lost. It must be called before the loops are started.
func (p *Protocol) SetProbeTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	p.flight.stop()
	p.flight = newInflight(d)
}

// Upgrade takes a HTTP request and upgrades the connection to WebSocket.
// Returns a websocket Conn if the upgrade succeeded, and an error otherwise.
func Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	u := websocket.Upgrader{
		// Allow cross-origin resource sharing.
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	return u.Upgrade(w, r, nil)
}

// SenderLoop sends a probe immediately and then once per interval until
// ctx is done. It returns nil when ctx is done and an error wrapping ErrSend
// if a write fails, which ends the session.
func (p *Protocol) SenderLoop(ctx context.Context) error {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := p.sendProbe(); err != nil {
			if ctx.Err() != nil {
				// The connection was closed because the session is over.
				return nil
			}
			return fmt.Errorf("%w: %v", ErrSend, err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

func (p *Protocol) sendProbe() error {
	sent := p.now()
	msg := model.NewPing(sent)
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	p.conn.SetWriteDeadline(sent.Add(spec.WriteTimeout))
	if err := p.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return err
	}
	p.flight.add(*msg.Timestamp, sent)
	p.probesSent.Add(1)
	metrics.ProbesSent.Inc()
	log.Debug("probe sent", "timestamp", *msg.Timestamp)
	return nil
}

// ReceiverLoop reads inbound messages until ctx is done or the connection
// ends, turning each echo into a sample. Anything that is not a valid echo
// is dropped. The end of the stream is not an error.
func (p *Protocol) ReceiverLoop(ctx context.Context) error {
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Warn("connection read ended", "error", err)
			}
			return nil
		}
		// The receive time is recorded as soon as possible after the read.
		recv := p.now()
		if ctx.Err() != nil {
			return nil
		}
		p.process(data, recv)
	}
}

// process handles a single inbound payload received at recv.
func (p *Protocol) process(data []byte, recv time.Time) {
	ts, rtt, err := ParseEcho(data, recv)
	if err != nil {
		p.discarded.Add(1)
		metrics.MessagesDiscarded.WithLabelValues(discardReason(err)).Inc()
		log.Debug("discarding message", "reason", err, "len", len(data))
		return
	}
	if !p.store.Append(rtt) {
		return
	}
	p.flight.ack(ts)
	p.echoesReceived.Add(1)
	metrics.EchoesReceived.Inc()
	metrics.RTT.Observe(rtt)
	log.Debug("echo received", "timestamp", ts, "rtt", rtt)
}

// ParseEcho decodes an echo message received at recv and returns the
// timestamp it carries and the round-trip time in milliseconds.
// Duplicated echoes are not detected: each of them yields an RTT.
func ParseEcho(data []byte, recv time.Time) (float64, float64, error) {
	var m model.Message
	if err := json.Unmarshal(data, &m); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if m.Type != spec.TypePong {
		return 0, 0, ErrNotEcho
	}
	if m.Timestamp == nil {
		return 0, 0, ErrNoTimestamp
	}
	return *m.Timestamp, RTT(*m.Timestamp, recv), nil
}

// RTT returns the time elapsed between the sent timestamp (seconds since the
// epoch) and recv, in milliseconds.
func RTT(sent float64, recv time.Time) float64 {
	return (model.EpochSeconds(recv) - sent) * 1000
}

func discardReason(err error) string {
	switch {
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrNotEcho):
		return "not_echo"
	case errors.Is(err, ErrNoTimestamp):
		return "no_timestamp"
	default:
		return "other"
	}
}

// Counters returns the message counters of this Protocol.
func (p *Protocol) Counters() model.Counters {
	return model.Counters{
		ProbesSent:     p.probesSent.Load(),
		EchoesReceived: p.echoesReceived.Load(),
		Discarded:      p.discarded.Load(),
		Lost:           p.flight.lost.Load(),
	}
}

// Outstanding returns the number of probes still waiting for an echo.
func (p *Protocol) Outstanding() int {
	return p.flight.outstanding()
}

// Close closes the connection, which makes a blocked ReceiverLoop return,
// and stops probe tracking. It is safe to call more than once.
func (p *Protocol) Close() error {
	p.closeOnce.Do(func() {
		p.flight.stop()
		p.closeErr = p.conn.Close()
	})
	return p.closeErr
}
