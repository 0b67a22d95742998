// Package client implements a measurement session against a probe1
// endpoint: it connects, probes for a fixed duration, and reports the
// resulting statistics.
package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/erebus-edge/edgeprobe/internal/geo"
	"github.com/erebus-edge/edgeprobe/internal/samples"
	"github.com/erebus-edge/edgeprobe/pkg/probe1"
	"github.com/erebus-edge/edgeprobe/pkg/probe1/model"
	"github.com/erebus-edge/edgeprobe/pkg/probe1/spec"
	"github.com/erebus-edge/edgeprobe/pkg/stats"
	"github.com/erebus-edge/edgeprobe/pkg/version"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultWebSocketHandshakeTimeout is the default timeout used by the client
	// for the WebSocket handshake.
	DefaultWebSocketHandshakeTimeout = 5 * time.Second

	libraryName = "edgeprobe-client"

	closeTimeout = time.Second
)

var (
	// ErrConnect is returned when the endpoint cannot be reached.
	ErrConnect = errors.New("connection failed")
	// ErrSessionAborted is returned when a session ends before its deadline
	// because the connection failed.
	ErrSessionAborted = errors.New("session aborted")

	libraryVersion = version.Version
)

// Client runs latency measurement sessions.
type Client struct {
	// ClientName is the name of the client sent to the server as part of the user-agent.
	ClientName string
	// ClientVersion is the version of the client sent to the server as part of the user-agent.
	ClientVersion string

	config Config
	dialer *websocket.Dialer

	stateMu sync.Mutex
	state   State
}

// makeUserAgent creates the user agent string.
func makeUserAgent(clientName, clientVersion string) string {
	return clientName + "/" + clientVersion + " " + libraryName + "/" + libraryVersion
}

// New returns a new Client with the provided client name, version and config.
// It panics if clientName or clientVersion are empty. Zero timings in config
// are replaced with their defaults.
func New(clientName, clientVersion string, config Config) *Client {
	if clientName == "" || clientVersion == "" {
		panic("client name and version must be non-empty")
	}
	defaults := DefaultConfig()
	if config.Endpoint == "" {
		config.Endpoint = defaults.Endpoint
	}
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.Length <= 0 {
		config.Length = defaults.Length
	}
	if config.ProbeTimeout <= 0 {
		config.ProbeTimeout = defaults.ProbeTimeout
	}
	if config.UpdateInterval <= 0 {
		config.UpdateInterval = defaults.UpdateInterval
	}
	if config.Emitter == nil {
		config.Emitter = NewHumanReadable(true, false)
	}
	if config.Locator == nil {
		l := geo.New(geo.DefaultURL)
		l.UserAgent = makeUserAgent(clientName, clientVersion)
		config.Locator = l
	}
	return &Client{
		ClientName:    clientName,
		ClientVersion: clientVersion,

		config: config,
		dialer: &websocket.Dialer{
			HandshakeTimeout: DefaultWebSocketHandshakeTimeout,
			Proxy:            http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: config.NoVerify,
			},
		},
	}
}

// State returns the current session state.
func (c *Client) State() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

func (c *Client) setState(s State, logger *log.Logger) {
	c.stateMu.Lock()
	c.state = s
	c.stateMu.Unlock()
	logger.Debug("session state changed", "state", s)
	c.config.Emitter.OnState(s)
}

func (c *Client) connect(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(c.config.Endpoint)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	headers := http.Header{}
	headers.Add("User-Agent", makeUserAgent(c.ClientName, c.ClientVersion))
	headers.Add("X-Client-Platform", runtime.GOOS+"/"+runtime.GOARCH)
	conn, _, err := c.dialer.DialContext(ctx, u.String(), headers)
	return conn, err
}

// Run runs one measurement session and returns its summary.
//
// A connection failure is returned as an error wrapping ErrConnect and no
// summary is produced. If the connection breaks while probing, the session
// ends early: the summary of what was collected is still returned, together
// with an error wrapping ErrSessionAborted.
func (c *Client) Run(ctx context.Context) (*model.Summary, error) {
	logger := log.With("session", uuid.NewString())
	emitter := c.config.Emitter

	c.setState(StateConnecting, logger)
	emitter.OnStart(c.config.Endpoint)
	conn, err := c.connect(ctx)
	if err != nil {
		c.setState(StateClosed, logger)
		err = fmt.Errorf("%w: %s: %v", ErrConnect, c.config.Endpoint, err)
		emitter.OnError(err)
		return nil, err
	}
	conn.SetReadLimit(spec.MaxMessageSize)
	emitter.OnConnect(c.config.Endpoint)
	logger.Info("connected", "endpoint", c.config.Endpoint,
		"interval", c.config.Interval, "duration", c.config.Length)

	store := samples.New()
	proto := probe1.New(conn, store)
	proto.SetInterval(c.config.Interval)
	proto.SetProbeTimeout(c.config.ProbeTimeout)

	c.setState(StateRunning, logger)
	timeout, cancel := context.WithTimeout(ctx, c.config.Length)
	defer cancel()

	updates, err := c.startUpdates(store)
	if err != nil {
		// Live updates are cosmetic, the measurement goes on without them.
		logger.Warn("cannot schedule live updates", "error", err)
	}

	g, gctx := errgroup.WithContext(timeout)
	g.Go(func() error {
		return proto.SenderLoop(gctx)
	})
	g.Go(func() error {
		return proto.ReceiverLoop(gctx)
	})

	// Wait for the deadline or for a failed send, whichever comes first.
	<-gctx.Done()

	c.setState(StateDraining, logger)
	store.Seal()
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeTimeout))
	proto.Close()
	if updates != nil {
		if err := updates.Shutdown(); err != nil {
			logger.Debug("scheduler shutdown", "error", err)
		}
	}
	loopErr := g.Wait()

	counters := proto.Counters()
	logger.Info("measurement complete", "samples", store.Len(),
		"sent", counters.ProbesSent, "discarded", counters.Discarded,
		"lost", counters.Lost, "outstanding", proto.Outstanding())

	c.setState(StateReporting, logger)
	final := stats.Describe(store.Snapshot())
	emitter.OnUpdate(final)
	emitter.OnComplete(counters)

	// The region is looked up even if ctx was canceled, so that an
	// interrupted session still gets a complete summary.
	region := c.config.Locator.Region(context.WithoutCancel(ctx))
	summary := model.NewSummary(time.Now(), region, final)
	emitter.OnSummary(summary)
	c.setState(StateClosed, logger)

	if loopErr != nil {
		err := fmt.Errorf("%w: %v", ErrSessionAborted, loopErr)
		emitter.OnError(err)
		return summary, err
	}
	return summary, nil
}

// startUpdates schedules the periodic live updates.
func (c *Client) startUpdates(store *samples.Store) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(c.config.UpdateInterval),
		gocron.NewTask(func() {
			c.config.Emitter.OnUpdate(stats.Describe(store.Snapshot()))
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		s.Shutdown()
		return nil, fmt.Errorf("failed to create update job: %w", err)
	}
	s.Start()
	return s, nil
}
