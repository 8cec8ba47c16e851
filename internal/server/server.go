// Package server wires the saveconnectd daemon together: discovery, the
// accessory platform, the HomeKit and MQTT hosts, the history recorder and
// the HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/jmylchreest/saveconnectd/internal/accessory"
	"github.com/jmylchreest/saveconnectd/internal/config"
	"github.com/jmylchreest/saveconnectd/internal/events"
	"github.com/jmylchreest/saveconnectd/internal/history"
	"github.com/jmylchreest/saveconnectd/internal/homekit"
	"github.com/jmylchreest/saveconnectd/internal/http/handlers"
	"github.com/jmylchreest/saveconnectd/internal/http/mw"
	"github.com/jmylchreest/saveconnectd/internal/http/routes"
	"github.com/jmylchreest/saveconnectd/internal/logging"
	"github.com/jmylchreest/saveconnectd/internal/mqtt"
	"github.com/jmylchreest/saveconnectd/internal/ws"
	"github.com/jmylchreest/saveconnectd/pkg/saveconnect"
)

// Options carries build information and optional replacements for the
// network facing parts of the daemon.
type Options struct {
	Version string
	Commit  string
	Date    string

	// Browser defaults to a zeroconf browser.
	Browser saveconnect.Browser
	// NewTransport defaults to an HTTP client per device.
	NewTransport func(host string) accessory.Transport
	// Broker replaces the MQTT connection when MQTT is enabled.
	Broker mqtt.Broker
	// PointWriter replaces the InfluxDB write API when InfluxDB is enabled.
	PointWriter history.PointWriter
}

// Server manages the saveconnectd daemon.
type Server struct {
	logger   *slog.Logger
	cfg      *config.Config
	opts     Options
	eventBus *events.Bus
	platform *accessory.Platform

	homekit    *homekit.Bridge
	mqttClient *mqtt.Client
	influx     *history.Client
	detach     []func()

	rootCtx    context.Context
	rootCancel context.CancelFunc
	httpServer *http.Server
	listener   net.Listener
	discovered chan struct{}
	wg         sync.WaitGroup
}

// New creates a new server instance.
func New(logger *slog.Logger, cfg *config.Config, opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	eventBus := events.NewBus()
	rootCtx, rootCancel := context.WithCancel(context.Background())

	platform := accessory.NewPlatform(accessory.Options{
		Name:         cfg.Platform.Name,
		PollInterval: cfg.PollInterval(),
		HTTPClient:   &http.Client{Timeout: cfg.RequestTimeout()},
		Cache:        accessory.NewCache(cfg.State.CacheFile),
		Bus:          eventBus,
		Logger:       logger,
		NewTransport: opts.NewTransport,
	})

	return &Server{
		logger:     logger,
		cfg:        cfg,
		opts:       opts,
		eventBus:   eventBus,
		platform:   platform,
		rootCtx:    rootCtx,
		rootCancel: rootCancel,
		discovered: make(chan struct{}),
	}
}

// Platform returns the accessory platform.
func (s *Server) Platform() *accessory.Platform { return s.platform }

// Events returns the event bus.
func (s *Server) Events() *events.Bus { return s.eventBus }

// Discovered is closed once the startup discovery run has finished.
func (s *Server) Discovered() <-chan struct{} { return s.discovered }

// Addr returns the address the HTTP API is listening on, or "" when the
// API is disabled.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start connects the configured hosts and sinks, starts the HTTP API and
// runs discovery in the background. Accessories appear once discovery has
// finished.
func (s *Server) Start() error {
	s.logger.Info("Starting saveconnectd server", "version", s.opts.Version)

	if err := s.platform.LoadCache(); err != nil {
		s.logger.Warn("platform: ignoring unreadable accessory cache", "error", err)
	}

	if err := s.startMQTT(); err != nil {
		return err
	}
	if err := s.startHistory(); err != nil {
		return err
	}
	if s.cfg.HomeKit.Enabled {
		s.homekit = homekit.NewBridge(homekit.Config{
			Name:     s.cfg.Platform.Name,
			Pin:      s.cfg.HomeKit.Pin,
			Addr:     s.cfg.HomeKit.ListenAddress,
			StoreDir: s.cfg.HomeKit.StoreDir,
			Version:  s.opts.Version,
		}, s.logger)
		s.platform.AddHost(s.homekit)
	}

	if s.cfg.API.ListenAddress != "" {
		if err := s.startAPI(); err != nil {
			return err
		}
	}

	s.cfg.Watch(s.applyConfig)

	s.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in discovery", "recover", r)
			}
		}()
		s.discoverAndServe()
	})
	return nil
}

// discoverAndServe runs one discovery window, then starts the HomeKit
// bridge with whatever was set up. hap serves a fixed accessory set, so the
// bridge has to wait for discovery.
func (s *Server) discoverAndServe() {
	browser := s.opts.Browser
	if browser == nil {
		browser = saveconnect.NewZeroconfBrowser(s.logger)
	}

	res, err := s.platform.Discover(s.rootCtx, browser, saveconnect.DiscoveryOptions{
		ServiceType: s.cfg.Discovery.ServiceType,
		Domain:      s.cfg.Discovery.Domain,
		Marker:      s.cfg.Discovery.Marker,
		Window:      s.cfg.DiscoveryWindow(),
		Logger:      s.logger,
	})
	close(s.discovered)
	if err != nil {
		if s.rootCtx.Err() != nil {
			return
		}
		s.logger.Error("platform: discovery failed, keeping cached accessories", "error", err)
	} else {
		s.logger.Info("platform: discovery finished",
			"added", len(res.Added), "restored", len(res.Restored), "removed", len(res.Removed))
	}

	if s.homekit != nil {
		if err := s.homekit.Start(s.rootCtx); err != nil {
			s.logger.Error("homekit: bridge failed", "error", err)
		}
	}
}

func (s *Server) startMQTT() error {
	if !s.cfg.MQTT.Enabled {
		return nil
	}
	broker := s.opts.Broker
	if broker == nil {
		client, err := mqtt.Connect(s.cfg.MQTT, s.logger)
		if err != nil {
			return err
		}
		s.mqttClient = client
		broker = client
	}
	bridge := mqtt.NewBridge(broker, s.cfg.MQTT.TopicPrefix, s.cfg.MQTT.QoS, s.logger)
	s.platform.AddHost(bridge)
	return nil
}

func (s *Server) startHistory() error {
	if !s.cfg.InfluxDB.Enabled {
		return nil
	}
	w := s.opts.PointWriter
	if w == nil {
		client, err := history.Connect(s.cfg.InfluxDB, s.logger)
		if err != nil {
			return err
		}
		s.influx = client
		w = client.WriteAPI()
	}
	rec := history.NewRecorder(w, s.logger)
	s.detach = append(s.detach, rec.Attach(s.eventBus))
	return nil
}

func (s *Server) startAPI() error {
	addr := s.cfg.API.ListenAddress
	s.logger.Info("Starting HTTP API server", "address", addr)

	router := chi.NewRouter()
	router.Use(mw.RequestLogging(s.logger))
	router.Use(mw.RateLimitByIP(mw.RateLimitConfig{
		RequestsPerMinute: s.cfg.API.RateLimit,
		Exempt:            []string{"/healthz", "/api/v1/health"},
	}))

	api := humachi.New(router, routes.NewHumaConfig(s.opts.Version, ""))
	routes.Register(api, &routes.Handlers{
		HealthCheck:  handlers.HealthCheck,
		VersionCheck: handlers.VersionCheck(s.opts.Version, s.opts.Commit, s.opts.Date),
		Accessory:    &handlers.AccessoryHandler{Accessories: s.platform, Logger: s.logger},
		Logging:      &handlers.LoggingHandler{Logger: s.logger},
	})

	wsHub := ws.NewHub(s.logger, s.eventBus)
	s.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in WebSocket hub", "recover", r)
			}
		}()
		wsHub.Run(s.rootCtx)
	})
	router.Get("/api/v1/ws", ws.Handler(wsHub, s.logger))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in HTTP server goroutine", "recover", r)
			}
		}()
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", "error", err)
		}
		s.logger.Info("HTTP server stopped")
	})
	return nil
}

// applyConfig takes the settings that can change without a restart from a
// reloaded config file.
func (s *Server) applyConfig(next *config.Config) {
	level, err := logging.SetLevel(next.Logging.Level)
	if err != nil {
		s.logger.Warn("config: ignoring log level", "error", err)
		return
	}
	s.logger.Info("config: log level applied", "level", level)
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() {
	s.logger.Info("Shutting down saveconnectd server")
	s.rootCancel()

	if s.httpServer != nil {
		s.logger.Info("Shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown failed", "error", err)
		}
	}

	s.logger.Info("Waiting for services to stop...")
	s.wg.Wait()
	s.platform.Shutdown()

	for _, fn := range s.detach {
		fn()
	}
	if s.influx != nil {
		s.influx.Close()
	}
	if s.mqttClient != nil {
		if err := s.mqttClient.Close(); err != nil {
			s.logger.Error("mqtt: close failed", "error", err)
		}
	}
	s.logger.Info("saveconnectd server shut down gracefully")
}
