package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/erebus-edge/edgeprobe/internal/geo"
	"github.com/erebus-edge/edgeprobe/pkg/client"
	"github.com/erebus-edge/edgeprobe/pkg/probe1/spec"
	"github.com/erebus-edge/edgeprobe/pkg/version"
	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/prometheusx"
	"github.com/m-lab/go/rtx"
)

const clientName = "edgeprobe"

var (
	flagEndpoint     = flag.String("endpoint", spec.DefaultEndpoint, "WebSocket endpoint to probe (ws:// or wss://)")
	flagInterval     = flag.Duration("interval", spec.DefaultInterval, "Time between two probes")
	flagDuration     = flag.Duration("duration", spec.DefaultDuration, "Length of the measurement")
	flagProbeTimeout = flag.Duration("probe-timeout", spec.DefaultProbeTimeout, "Time after which an unanswered probe is counted as lost")
	flagGeoURL       = flag.String("geo.url", geo.DefaultURL, "IP geolocation service used for the summary region")
	flagGeoTimeout   = flag.Duration("geo.timeout", geo.DefaultTimeout, "Timeout for the geolocation lookup")
	flagNoVerify     = flag.Bool("no-verify", false, "Skip TLS certificate verification")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagLive         = flag.Bool("live", true, "Show the live statistics table")
	flagMetrics      = flag.Bool("metrics", false, "Serve Prometheus metrics")
)

func main() {
	flag.Parse()
	rtx.Must(flagx.ArgsFromEnv(flag.CommandLine), "failed to read args from env")

	log.SetReportTimestamp(true)
	if *flagDebug {
		log.SetLevel(log.DebugLevel)
		log.SetReportCaller(true)
	}

	if *flagMetrics {
		promSrv := prometheusx.MustServeMetrics()
		defer promSrv.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	locator := geo.New(*flagGeoURL)
	locator.Timeout = *flagGeoTimeout
	locator.UserAgent = clientName + "/" + version.Version

	cl := client.New(clientName, version.Version, client.Config{
		Endpoint:     *flagEndpoint,
		Interval:     *flagInterval,
		Length:       *flagDuration,
		ProbeTimeout: *flagProbeTimeout,
		Emitter:      client.NewHumanReadable(*flagLive, *flagDebug),
		Locator:      locator,
		NoVerify:     *flagNoVerify,
	})

	_, err := cl.Run(ctx)
	switch {
	case errors.Is(err, client.ErrConnect):
		log.Error("cannot connect", "error", err)
		os.Exit(1)
	case err != nil:
		// The summary was printed, but the measurement is incomplete.
		log.Error("measurement failed", "error", err)
		os.Exit(2)
	}
}
