package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"tailscale.com/tsnet"

	"github.com/claude/posecoach/internal/catalog"
	"github.com/claude/posecoach/internal/config"
	posemcp "github.com/claude/posecoach/internal/mcp"
	"github.com/claude/posecoach/internal/metrics"
	"github.com/claude/posecoach/internal/server"
	"github.com/claude/posecoach/internal/session"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (defaults plus POSECOACH_* env when empty)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	log.Info("posecoach starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Metrics
	var m *metrics.Metrics
	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
	}

	// Load catalog
	store := catalog.NewStore(cfg.Catalog.Path, log)
	store.OnLoad(func(res *catalog.Result, err error) {
		if err != nil {
			m.CatalogLoaded(0, 0, err)
			return
		}
		m.CatalogLoaded(res.Registry.Len(), len(res.Diagnostics), nil)
	})
	if _, err := store.Reload(); err != nil {
		log.Error("failed to load exercise catalog", "path", cfg.Catalog.Path, "error", err)
		os.Exit(1)
	}
	if !store.Registry().Has(cfg.Session.DefaultExercise) {
		log.Warn("default exercise not in catalog", "exercise", cfg.Session.DefaultExercise)
	}

	// Sessions
	mgr := session.NewManager(store, session.Config{
		DefaultExercise: cfg.Session.DefaultExercise,
		Settings: session.Settings{
			CorrectPoseThreshold: cfg.Session.CorrectPoseThreshold,
			MaxFeedbackCooldown:  cfg.Session.MaxFeedbackCooldown,
		},
		MaxSessions: cfg.Session.MaxSessions,
	}, m, log)
	defer mgr.Close()

	// Create server
	srv := server.New(mgr, store, log)
	if reg != nil {
		srv.SetMetrics(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(posemcp.New(posemcp.NewLocal(store), Version, log)))

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	if cfg.Catalog.Watch {
		w := catalog.NewWatcher(store, time.Duration(cfg.Catalog.WatchDebounceMS)*time.Millisecond, log)
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		mgr.Close()
		os.Exit(1)
	}
	log.Info("server stopped")
}
