package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mjfern/rootdns/internal/admin"
	"github.com/mjfern/rootdns/internal/config"
	"github.com/mjfern/rootdns/internal/logging"
	"github.com/mjfern/rootdns/internal/resolver"
	"github.com/mjfern/rootdns/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds parsed command-line flag values. Unset flags leave the
// loaded config untouched.
type cliFlags struct {
	configPath string
	host       string
	port       int
	rootServer string
	jsonLogs   bool
	debug      bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&f.host, "host", "", "Override DNS listener bind host")
	flag.IntVar(&f.port, "port", 0, "Override DNS listener bind port")
	flag.StringVar(&f.rootServer, "root-server", "", "Override the resolver's starting root server IP")
	flag.BoolVar(&f.jsonLogs, "json-logs", false, "Enable JSON structured logging")
	flag.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	flag.Parse()
	return f
}

func applyCLIOverrides(cfg *config.Config, f cliFlags) {
	if f.host != "" {
		cfg.Server.Host = f.host
	}
	if f.port != 0 {
		cfg.Server.Port = f.port
	}
	if f.rootServer != "" {
		cfg.Resolver.RootServer = f.rootServer
	}
	if f.jsonLogs {
		cfg.Logging.Structured = true
	}
	if f.debug {
		cfg.Logging.Level = "DEBUG"
	}
}

func run() error {
	flags := parseFlags()

	cfgPath := config.ResolveConfigPath(flags.configPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyCLIOverrides(cfg, flags)

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: "json",
	})

	upstreamTimeout, err := time.ParseDuration(cfg.Resolver.UpstreamTimeout)
	if err != nil {
		return fmt.Errorf("invalid resolver.upstream_timeout %q: %w", cfg.Resolver.UpstreamTimeout, err)
	}

	logger.Info("rootdnsd starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"root_server", cfg.Resolver.RootServer,
		"max_steps", cfg.Resolver.MaxSteps,
		"glue_depth", cfg.Resolver.GlueDepth,
		"admin_enabled", cfg.Admin.Enabled,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	res := resolver.New(resolver.Config{
		RootServer:      cfg.Resolver.RootServer,
		MaxSteps:        cfg.Resolver.MaxSteps,
		GlueDepth:       cfg.Resolver.GlueDepth,
		UpstreamTimeout: upstreamTimeout,
		Logger:          logger,
	})

	stats := server.NewDNSStats()
	handler := &server.Handler{
		Resolver: res,
		Stats:    stats,
		Logger:   logger,
		Timeout:  4 * time.Second,
	}
	udpSrv := &server.UDPServer{Handler: handler, Logger: logger}

	startTime := time.Now()
	var adminSrv *admin.Server
	if cfg.Admin.Enabled {
		adminSrv = admin.New(cfg.Admin, logger, stats, startTime)
		go func() {
			serveErr := adminSrv.ListenAndServe()
			if serveErr == nil || errors.Is(serveErr, http.ErrServerClosed) {
				return
			}
			logger.Error("admin server error", "error", serveErr)
			cancel()
		}()
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	err = udpSrv.Run(ctx, addr)

	if adminSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = adminSrv.Shutdown(shutdownCtx)
		shutdownCancel()
		logger.Info("admin server stopped")
	}

	if err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	return nil
}
