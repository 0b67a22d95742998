package client

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/erebus-edge/edgeprobe/pkg/probe1/model"
	"github.com/erebus-edge/edgeprobe/pkg/stats"
	"github.com/gorilla/websocket"
)

// Emitter is an interface for emitting results.
type Emitter interface {
	// OnStart is called before connecting to the endpoint.
	OnStart(endpoint string)
	// OnConnect is called when the WebSocket connection is established.
	OnConnect(endpoint string)
	// OnUpdate is called periodically with the current statistics, and
	// once more with the final ones.
	OnUpdate(s stats.Snapshot)
	// OnError is called on errors.
	OnError(err error)
	// OnComplete is called once the probe loops have stopped.
	OnComplete(c model.Counters)
	// OnSummary is called with the final summary.
	OnSummary(s *model.Summary)
	// OnState is called on each session state change.
	OnState(s State)
	// OnDebug is called to print debug information.
	OnDebug(msg string)
}

const tableTitle = "📡 Edge WebSocket Latency Monitor"

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	doneStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

// HumanReadable renders a live statistics table and prints the summary as
// JSON. It can be configured to include debug output, too.
type HumanReadable struct {
	// Out receives the table and status messages. Defaults to stderr.
	Out io.Writer
	// SummaryOut receives the final summary JSON. Defaults to stdout.
	SummaryOut io.Writer
	// Live enables the statistics table.
	Live bool
	// Debug enables debug messages.
	Debug bool

	mu    sync.Mutex
	lines int
}

// NewHumanReadable returns a HumanReadable writing to stderr and stdout.
func NewHumanReadable(live, debug bool) *HumanReadable {
	return &HumanReadable{
		Out:        os.Stderr,
		SummaryOut: os.Stdout,
		Live:       live,
		Debug:      debug,
	}
}

func (h *HumanReadable) out() io.Writer {
	if h.Out == nil {
		return os.Stderr
	}
	return h.Out
}

// OnStart prints the endpoint.
func (h *HumanReadable) OnStart(endpoint string) {
	fmt.Fprintf(h.out(), "Probing %s\n", endpoint)
}

// OnConnect is called when the connection to the endpoint is established.
func (h *HumanReadable) OnConnect(endpoint string) {
	fmt.Fprintf(h.out(), "Connected to %s\n", endpoint)
}

// OnUpdate redraws the statistics table in place.
func (h *HumanReadable) OnUpdate(s stats.Snapshot) {
	if !h.Live {
		return
	}
	rendered := RenderTable(s)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.lines > 0 {
		// Move the cursor to the start of the previous table and clear it.
		fmt.Fprintf(h.out(), "\033[%dA\033[J", h.lines)
	}
	fmt.Fprintln(h.out(), rendered)
	h.lines = lipgloss.Height(rendered)
}

// OnError is called on errors.
func (h *HumanReadable) OnError(err error) {
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		fmt.Fprintln(h.out(), err)
	}
}

// OnComplete prints the completion message.
func (h *HumanReadable) OnComplete(c model.Counters) {
	h.mu.Lock()
	h.lines = 0
	h.mu.Unlock()
	fmt.Fprintln(h.out())
	fmt.Fprintln(h.out(), doneStyle.Render("✅ Latency test completed."))
	h.OnDebug(fmt.Sprintf("probes sent: %d, echoes: %d, discarded: %d, lost: %d",
		c.ProbesSent, c.EchoesReceived, c.Discarded, c.Lost))
}

// OnSummary writes the summary as indented JSON.
func (h *HumanReadable) OnSummary(s *model.Summary) {
	w := h.SummaryOut
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		h.OnError(err)
	}
}

// OnState prints state changes in debug mode.
func (h *HumanReadable) OnState(s State) {
	h.OnDebug("session " + s.String())
}

// OnDebug is called to print debug information.
func (h *HumanReadable) OnDebug(msg string) {
	if h.Debug {
		fmt.Fprintf(h.out(), "DEBUG: %s\n", msg)
	}
}

// RenderTable renders s as a titled one-row table.
func RenderTable(s stats.Snapshot) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("RTT (ms)", "p50 (ms)", "p95 (ms)", "p99 (ms)", "Samples").
		Row(s.Latest.String(), s.P50.String(), s.P95.String(), s.P99.String(),
			strconv.Itoa(s.Count)).
		StyleFunc(func(row, col int) lipgloss.Style {
			return cellStyle
		})
	return titleStyle.Render(tableTitle) + "\n" + t.Render()
}

// Checks that HumanReadable implements Emitter.
var _ Emitter = &HumanReadable{}
