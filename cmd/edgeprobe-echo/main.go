package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/erebus-edge/edgeprobe/internal/echo"
	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/prometheusx"
	"github.com/m-lab/go/rtx"
)

var (
	flagCertFile          = flag.String("cert", "", "The file with server certificates in PEM format.")
	flagKeyFile           = flag.String("key", "", "The file with server key in PEM format.")
	flagEndpoint          = flag.String("wss_addr", ":4443", "Listen address/port for TLS connections")
	flagEndpointCleartext = flag.String("ws_addr", ":8080", "Listen address/port for cleartext connections")
	flagPath              = flag.String("path", "/", "Path accepting WebSocket upgrades")
	flagDelay             = flag.Duration("delay", 0, "Artificial delay added before each echo")
)

// httpServer creates a new *http.Server with explicit Read and Write
// timeouts, the provided address and handler, and an empty TLS configuration.
func httpServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:      addr,
		Handler:   handler,
		TLSConfig: &tls.Config{},
		// Echo sessions are long lived, so only the handshake is bounded.
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func serve(srv *http.Server, tlsEnabled bool) {
	l, err := net.Listen("tcp", srv.Addr)
	rtx.Must(err, "failed to create listener")
	go func() {
		var err error
		if tlsEnabled {
			err = srv.ServeTLS(l, *flagCertFile, *flagKeyFile)
		} else {
			err = srv.Serve(l)
		}
		if !errors.Is(err, http.ErrServerClosed) {
			rtx.Must(err, "could not start server on %s", srv.Addr)
		}
	}()
}

func main() {
	flag.Parse()
	rtx.Must(flagx.ArgsFromEnv(flag.CommandLine), "failed to read args from env")

	// Initialize logging and metrics.
	log.SetReportCaller(true)
	log.SetReportTimestamp(true)
	log.SetLevel(log.DebugLevel)

	promSrv := prometheusx.MustServeMetrics()
	defer promSrv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle(*flagPath, echo.New(*flagDelay))

	cleartext := httpServer(*flagEndpointCleartext, mux)
	log.Info("About to listen for ws probes", "endpoint", *flagEndpointCleartext, "path", *flagPath)
	serve(cleartext, false)
	defer cleartext.Close()

	// Only start TLS-based services if certs and keys are provided
	if *flagCertFile != "" && *flagKeyFile != "" {
		secure := httpServer(*flagEndpoint, mux)
		log.Info("About to listen for wss probes", "endpoint", *flagEndpoint, "path", *flagPath)
		serve(secure, true)
		defer secure.Close()
	}

	<-ctx.Done()
	log.Info("shutting down")
}
