package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/me/newsletter/internal/config"
	"github.com/me/newsletter/internal/logging"
	"github.com/me/newsletter/internal/server"
	"github.com/me/newsletter/internal/store"
	"github.com/me/newsletter/pkg/newsapi"
)

func main() {
	configFile := flag.String("config", "", "Path to config.yaml (default ~/.newsletter/config.yaml)")
	dotEnv := flag.String("env-file", ".env", "Path to a .env file (empty to skip)")

	var fl config.WebConfig
	defaults := config.DefaultWebConfig()
	flag.StringVar(&fl.Addr, "addr", defaults.Addr, "Listen address")
	flag.StringVar(&fl.APIURL, "api", defaults.APIURL, "Newsletter backend URL")
	flag.StringVar(&fl.DBPath, "db", defaults.DBPath, "Browser session database (\":memory:\" for testing)")
	flag.DurationVar(&fl.SessionTTL, "session-ttl", defaults.SessionTTL, "Idle time before a browser session is purged")
	flag.BoolVar(&fl.SecureCookies, "secure-cookies", defaults.SecureCookies, "Mark cookies Secure (serve behind TLS)")
	flag.StringVar(&fl.LogLevel, "log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&fl.LogFormat, "log-format", defaults.LogFormat, "Log format (text, json)")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	flag.Parse()

	loader := config.NewLoader().WithDotEnv(*dotEnv)
	if *configFile != "" {
		loader = loader.WithPath(*configFile)
	}
	cfg, err := loader.Web()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Only flags given on the command line override the file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = fl.Addr
		case "api":
			cfg.APIURL = fl.APIURL
		case "db":
			cfg.DBPath = fl.DBPath
		case "session-ttl":
			cfg.SessionTTL = fl.SessionTTL
		case "secure-cookies":
			cfg.SecureCookies = fl.SecureCookies
		case "log-level":
			cfg.LogLevel = fl.LogLevel
		case "log-format":
			cfg.LogFormat = fl.LogFormat
		}
	})
	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "cannot create %s: %v\n", filepath.Dir(cfg.DBPath), err)
			os.Exit(1)
		}
	}

	// Open store and run migrations.
	st, err := store.NewSQLiteStore(cfg.DBPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Migrate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate database: %v\n", err)
		os.Exit(1)
	}
	logger.Info("database ready", "path", cfg.DBPath)

	api := newsapi.NewClient(cfg.API(), nil, logger)
	srv := server.New(cfg, st, api, logger)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv.StartJanitor(ctx, server.DefaultJanitorInterval)

	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "api", cfg.APIURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
