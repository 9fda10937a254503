package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/contact-normalizer/pkg/api"
	"github.com/hazyhaar/contact-normalizer/pkg/chassis"
	"github.com/hazyhaar/contact-normalizer/pkg/preset"
)

var version = "dev"

type config struct {
	Addr           string    `yaml:"addr"`
	PresetsDir     string    `yaml:"presets_dir"`
	MaxUploadBytes int64     `yaml:"max_upload_bytes"`
	MaxBodyBytes   int64     `yaml:"max_body_bytes"`
	MaxRows        int       `yaml:"max_rows"`
	LogLevel       string    `yaml:"log_level"`
	TLS            tlsConfig `yaml:"tls"`
}

// tlsConfig switches serve to the TLS chassis. Without cert files a
// self-signed cert is generated.
type tlsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	HTTP3    bool   `yaml:"http3"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "mcp":
		cmdMCP(os.Args[2:])
	case "normalize":
		cmdNormalize(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: contactnorm <command>

Commands:
  serve       Start the HTTP server (REST, /mcp, /metrics)
  mcp         Serve the MCP tools over stdio
  normalize   Normalize a contact file and write it as CSV, text or XLSX
`)
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	cfg, logger := setup(*cfgPath)
	reg := loadPresets(cfg, logger)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := api.NewMetrics(promReg)
	if err != nil {
		logger.Error("metrics", "error", err)
		os.Exit(1)
	}

	eps := api.NewEndpoints(endpointsConfig(cfg, reg, logger, metrics))
	router := api.NewRouter(eps, api.RouterOptions{
		MaxBodyBytes: cfg.MaxBodyBytes,
		Gatherer:     promReg,
		MCP:          server.NewStreamableHTTPServer(newMCPServer(eps)),
	})

	// SIGHUP: hot reload presets.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, reloading presets")
			if err := reg.Reload(); err != nil {
				logger.Error("reload failed, keeping previous presets", "error", err)
			} else {
				logger.Info("presets reloaded", "count", reg.Count())
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	if cfg.TLS.Enabled {
		cs, err := chassis.New(chassis.Config{
			Addr:     cfg.Addr,
			CertFile: cfg.TLS.CertFile,
			KeyFile:  cfg.TLS.KeyFile,
			Handler:  router,
			HTTP3:    cfg.TLS.HTTP3,
			Logger:   logger,
		})
		if err != nil {
			logger.Error("chassis", "error", err)
			os.Exit(1)
		}
		logger.Info("contactnorm listening", "addr", cfg.Addr, "tls", true, "http3", cfg.TLS.HTTP3, "version", version)
		g.Go(func() error { return cs.Start(gctx) })
		g.Go(func() error {
			<-gctx.Done()
			return shutdown(logger, cs.Stop)
		})
	} else {
		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		logger.Info("contactnorm listening", "addr", cfg.Addr, "version", version)
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return shutdown(logger, srv.Shutdown)
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func shutdown(logger *slog.Logger, stop func(context.Context) error) error {
	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return stop(ctx)
}

func cmdMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	cfg, logger := setup(*cfgPath)
	reg := loadPresets(cfg, logger)
	eps := api.NewEndpoints(endpointsConfig(cfg, reg, logger, nil))

	if err := server.ServeStdio(newMCPServer(eps)); err != nil {
		logger.Error("mcp stdio", "error", err)
		os.Exit(1)
	}
}

func newMCPServer(eps *api.Endpoints) *server.MCPServer {
	srv := server.NewMCPServer("contact-normalizer", version, server.WithToolCapabilities(true))
	api.RegisterMCPTools(srv, eps)
	return srv
}

func endpointsConfig(cfg config, reg *preset.Registry, logger *slog.Logger, m *api.Metrics) api.Config {
	return api.Config{
		Presets:        reg,
		Logger:         logger,
		Metrics:        m,
		MaxUploadBytes: cfg.MaxUploadBytes,
		MaxRows:        cfg.MaxRows,
	}
}

// setup loads the config and builds the logger. Logs go to stderr so the
// stdio transports keep stdout clean.
func setup(path string) (config, *slog.Logger) {
	logger := newLogger("info")
	cfg, err := loadConfig(path, logger)
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}
	return cfg, newLogger(cfg.LogLevel)
}

// loadPresets never fails: a broken presets dir leaves the built-in default.
func loadPresets(cfg config, logger *slog.Logger) *preset.Registry {
	reg := preset.NewRegistry(cfg.PresetsDir)
	if err := reg.Load(); err != nil {
		logger.Warn("presets not loaded, using built-in default", "dir", cfg.PresetsDir, "error", err)
	} else {
		logger.Info("presets loaded", "count", reg.Count())
	}
	return reg
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func defaultConfig() config {
	return config{
		Addr:       ":8420",
		PresetsDir: "presets",
		LogLevel:   "info",
	}
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string, logger *slog.Logger) (config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no config file, using defaults", "path", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.MaxUploadBytes < 0 || cfg.MaxBodyBytes < 0 || cfg.MaxRows < 0 {
		return cfg, fmt.Errorf("config %s: limits must not be negative", path)
	}
	if (cfg.TLS.CertFile == "") != (cfg.TLS.KeyFile == "") {
		return cfg, fmt.Errorf("config %s: tls.cert_file and tls.key_file go together", path)
	}
	return cfg, nil
}
