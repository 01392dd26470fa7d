package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"SketchBoard/internal/config"
	"SketchBoard/internal/logging"
	sbnet "SketchBoard/internal/net"
	"SketchBoard/internal/suggest"
	"SketchBoard/internal/ui"
)

// Port is the default port of the suggestion host.
const Port = 8888

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	host := flag.Bool("host", false, "run the suggestion host instead of the drawing app")
	port := flag.Int("port", Port, "port of the suggestion host")
	flag.Parse()

	boot := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg, err := config.Load(*configPath, boot)
	if err != nil {
		boot.Error("invalid configuration", "path", *configPath, "err", err)
		os.Exit(2)
	}
	logger, err := logging.New(os.Stderr, cfg.Log.Level)
	if err != nil {
		boot.Error("invalid log level", "err", err)
		os.Exit(2)
	}

	if *host {
		if err := runHost(logger, *port); err != nil {
			logger.Error("suggestion host stopped", "err", err)
			os.Exit(1)
		}
		return
	}
	runClient(cfg, logger)
}

// runHost serves rule-based suggestions over websocket and advertises them
// on the local network until interrupted.
func runHost(logger *slog.Logger, port int) error {
	hostLog := logger.With("component", "HOST")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := sbnet.Advertise(port)
	if err != nil {
		hostLog.Warn("mDNS advertising disabled", "err", err)
	} else {
		defer server.Shutdown()
	}

	hostLog.Info("starting suggestion host", "share", fmt.Sprintf("%s:%d", sbnet.GetOutgoingIP(hostLog), port))
	return sbnet.NewServer(suggest.Rules{}, logger).ListenAndServe(ctx, fmt.Sprintf(":%d", port))
}

// runClient opens the drawing window. Suggestions come from the configured
// host, or from one found by mDNS when discovery is enabled.
func runClient(cfg config.Config, logger *slog.Logger) {
	var collab suggest.Collaborator
	if cfg.Suggest.Addr != "" || cfg.Suggest.Discover {
		collab = sbnet.NewClient(cfg.Suggest.Addr,
			sbnet.WithDiscovery(cfg.Suggest.Discover, sbnet.DefaultDiscoverTimeout),
			sbnet.WithClientLogger(logger),
		)
	} else {
		logger.Info("no suggestion host configured, suggestions disabled")
	}
	ui.RunApp(cfg, collab, logger)
}
