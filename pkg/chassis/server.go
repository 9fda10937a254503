// Package chassis serves an http.Handler over TLS on both transports of one
// port:
//   - TCP -> HTTP/1.1 + HTTP/2
//   - UDP -> HTTP/3 over QUIC (optional, same handler)
//
// When HTTP/3 is on, responses carry an Alt-Svc header so HTTP/2 clients
// can upgrade. The MCP endpoint is part of the handler, so it rides on every
// transport.
//
// Without cert files a self-signed ECDSA P-256 cert is generated.
package chassis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
)

const (
	DefaultIdleTimeout = 5 * time.Minute
	DefaultKeepAlive   = 30 * time.Second
)

// Server is the TLS front of the API.
type Server struct {
	addr      string
	logger    *slog.Logger
	tlsCfg    *tls.Config
	handler   http.Handler
	http3     bool
	tcpServer *http.Server
	h3Server  *http3.Server
	mu        sync.Mutex
}

// Config holds configuration for the chassis server.
type Config struct {
	Addr     string      // listen address, TCP and UDP share the port
	TLS      *tls.Config // nil loads CertFile/KeyFile or generates a dev cert
	CertFile string
	KeyFile  string
	Handler  http.Handler
	HTTP3    bool
	Logger   *slog.Logger
}

func New(cfg Config) (*Server, error) {
	if cfg.Handler == nil {
		return nil, errors.New("chassis: nil handler")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	tlsCfg := cfg.TLS
	if tlsCfg == nil {
		var err error
		if cfg.CertFile != "" && cfg.KeyFile != "" {
			tlsCfg, err = ProductionTLSConfig(cfg.CertFile, cfg.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("load TLS cert: %w", err)
			}
			cfg.Logger.Info("TLS: certs loaded", "cert", cfg.CertFile)
		} else {
			tlsCfg, err = DevelopmentTLSConfig()
			if err != nil {
				return nil, fmt.Errorf("generate dev TLS: %w", err)
			}
			cfg.Logger.Warn("TLS: self-signed dev cert generated")
		}
	}

	return &Server{
		addr:    cfg.Addr,
		logger:  cfg.Logger,
		tlsCfg:  tlsCfg,
		handler: cfg.Handler,
		http3:   cfg.HTTP3,
	}, nil
}

// securityHeaders adds the standard hardening headers for a JSON API.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=63072000")
		next.ServeHTTP(w, r)
	})
}

// altSvcMiddleware advertises HTTP/3 on the same port.
func altSvcMiddleware(addr string, next http.Handler) http.Handler {
	_, port, _ := net.SplitHostPort(addr)
	if port == "" {
		port = "443"
	}
	altSvc := fmt.Sprintf(`h3=":%s"; ma=86400`, port)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Alt-Svc", altSvc)
		next.ServeHTTP(w, r)
	})
}

func quicConfig() *quic.Config {
	return &quic.Config{
		MaxStreamReceiveWindow:     10 * 1024 * 1024,
		MaxConnectionReceiveWindow: 50 * 1024 * 1024,
		MaxIdleTimeout:             DefaultIdleTimeout,
		KeepAlivePeriod:            DefaultKeepAlive,
	}
}

// Handler returns the handler as served, with the chassis middlewares.
func (s *Server) Handler() http.Handler {
	h := securityHeaders(s.handler)
	if s.http3 {
		h = altSvcMiddleware(s.addr, h)
	}
	return h
}

// Start runs the listeners until ctx is done or one of them fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()

	handler := s.Handler()

	tcpTLS := s.tlsCfg.Clone()
	tcpTLS.NextProtos = []string{"h2", "http/1.1"}
	s.tcpServer = &http.Server{
		Addr:              s.addr,
		Handler:           handler,
		TLSConfig:         tcpTLS,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.http3 {
		s.h3Server = &http3.Server{
			Addr:       s.addr,
			Handler:    handler,
			TLSConfig:  http3.ConfigureTLSConfig(s.tlsCfg.Clone()),
			QUICConfig: quicConfig(),
		}
	}
	tcpServer, h3Server := s.tcpServer, s.h3Server
	s.mu.Unlock()

	errCh := make(chan error, 2)
	go func() {
		ln, err := tls.Listen("tcp", s.addr, tcpTLS)
		if err != nil {
			errCh <- fmt.Errorf("TCP listen: %w", err)
			return
		}
		s.logger.Info("TCP listener ready", "addr", s.addr, "proto", "HTTP/1.1+HTTP/2")
		if err := tcpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("TCP: %w", err)
		}
	}()

	if h3Server != nil {
		go func() {
			s.logger.Info("UDP listener ready", "addr", s.addr, "proto", "HTTP/3")
			if err := h3Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("QUIC: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Stop gracefully shuts down both listeners.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	if s.tcpServer != nil {
		if err := s.tcpServer.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.h3Server != nil {
		if err := s.h3Server.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	s.logger.Info("chassis stopped")
	return firstErr
}
