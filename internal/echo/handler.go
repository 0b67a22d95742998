// Package echo implements a probe1 echo server: every ping is answered with
// a pong carrying the same timestamp.
package echo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/erebus-edge/edgeprobe/internal/metrics"
	"github.com/erebus-edge/edgeprobe/pkg/probe1"
	"github.com/erebus-edge/edgeprobe/pkg/probe1/spec"
	"github.com/gorilla/websocket"
)

// message is a probe1 message whose timestamp is kept as raw JSON, so that
// it is echoed back byte for byte.
type message struct {
	Type      string          `json:"type"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// Handler upgrades requests to WebSocket and echoes probes back.
type Handler struct {
	// Delay is added before each reply. Zero replies immediately.
	Delay time.Duration
}

// New returns a Handler replying after delay.
func New(delay time.Duration) *Handler {
	return &Handler{Delay: delay}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	wsConn, err := probe1.Upgrade(rw, req)
	if err != nil {
		log.Info("Websocket upgrade failed",
			"ctx", fmt.Sprintf("%p", req.Context()), "error", err)
		return
	}
	defer wsConn.Close()
	wsConn.SetReadLimit(spec.MaxMessageSize)

	log.Debug("echo session started", "client", req.RemoteAddr)
	for {
		kind, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure,
				websocket.CloseGoingAway) {
				log.Info("echo session ended", "client", req.RemoteAddr, "error", err)
			}
			return
		}
		out, ok := Reply(data)
		if !ok {
			metrics.EchoRequests.WithLabelValues("ignored").Inc()
			continue
		}
		if h.Delay > 0 {
			time.Sleep(h.Delay)
		}
		if err := wsConn.WriteMessage(kind, out); err != nil {
			log.Info("echo write failed", "client", req.RemoteAddr, "error", err)
			return
		}
		metrics.EchoRequests.WithLabelValues("echoed").Inc()
	}
}

// Reply returns the pong answering the ping in data. It returns false if
// data is not a ping with a timestamp.
func Reply(data []byte) ([]byte, bool) {
	var r message
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, false
	}
	ts := bytes.TrimSpace(r.Timestamp)
	if r.Type != spec.TypePing || len(ts) == 0 || bytes.Equal(ts, []byte("null")) {
		return nil, false
	}
	b, err := json.Marshal(message{Type: spec.TypePong, Timestamp: ts})
	if err != nil {
		return nil, false
	}
	return b, true
}
