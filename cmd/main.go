package main

//
//  @title           tradenorm API
//  @version         1.0
//  @description     Normalizes Charles Schwab and Firstrade exports into canonical trades and stores them.
//  @termsOfService  https://github.com/guttosm/tradenorm
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/tradenorm
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        normalize
//  @tag.description Stateless normalization of broker exports
//
//  @tag.name        imports
//  @tag.description Idempotent import of broker exports into PostgreSQL
//
//  @tag.name        trades
//  @tag.description Queries over imported trades
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/guttosm/tradenorm/config"
	"github.com/guttosm/tradenorm/internal/app"
	"github.com/guttosm/tradenorm/internal/domain/models"
	"github.com/guttosm/tradenorm/internal/ingestion"
	"github.com/guttosm/tradenorm/internal/logger"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Error().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// writeTrades serializes trades to w as indented JSON or YAML.
func writeTrades(w io.Writer, format string, trades []models.Trade) error {
	if trades == nil {
		trades = []models.Trade{}
	}
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(trades)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(trades); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (json or yaml)", format)
	}
}

// runNormalize parses paths in one pass and writes trades to stdout and one
// "warning: ..." line per warning to stderr.
func runNormalize(ctx context.Context, brokerName, format string, paths []string, stdout, stderr io.Writer) error {
	res, err := ingestion.NormalizeFiles(ctx, brokerName, paths)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}
	return writeTrades(stdout, format, res.Trades)
}

func runIngest(ctx context.Context, brokerName string, paths []string, parallel int, force bool) error {
	db, err := app.InitPostgres(config.AppConfig)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer func() { _ = db.Close() }()

	results, err := ingestion.ProcessFiles(ctx, db, brokerName, paths, parallel, force)
	if err != nil {
		return err
	}
	for _, r := range results {
		for _, w := range r.Warnings {
			logger.L().Warn().Str("file", r.Record.FileName).Msg(w)
		}
	}
	return nil
}

// run executes one CLI invocation and returns the process exit code.
//
// Modes (selected via --mode flag):
//   - normalize: prints canonical trades of the given files (json or yaml).
//   - ingest:    imports the given files into PostgreSQL.
//   - api:       starts the REST API.
//
// Files are positional arguments: tradenorm --mode normalize --broker schwab a.json b.json
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tradenorm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	mode := fs.String("mode", "normalize", "Mode: normalize, ingest or api")
	brokerName := fs.String("broker", "", "Broker of the input files: "+strings.Join(ingestion.SupportedBrokers(), ", "))
	format := fs.String("format", "json", "Output format for normalize: json or yaml")
	parallel := fs.Int("parallel", config.AppConfig.Ingest.Parallel, "How many files to import concurrently (0=auto up to CPU, max 8)")
	force := fs.Bool("force", false, "Re-import files even if already imported (replaces the previous import)")
	port := fs.String("port", config.AppConfig.Server.Port, "Port for API mode")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	paths := fs.Args()

	switch *mode {
	case "normalize":
		// stdout carries data only
		logger.InitWith(config.AppConfig.Log.Level, config.AppConfig.Log.Pretty, stderr)
		if *brokerName == "" || len(paths) == 0 {
			fmt.Fprintln(stderr, "normalize needs --broker and at least one file")
			return exitUsage
		}
		if err := runNormalize(ctx, *brokerName, *format, paths, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return exitFail
		}

	case "ingest":
		if *brokerName == "" || len(paths) == 0 {
			fmt.Fprintln(stderr, "ingest needs --broker and at least one file")
			return exitUsage
		}
		logger.L().Info().Str("broker", *brokerName).Int("files", len(paths)).Msg("running ingestion")
		if err := runIngest(ctx, *brokerName, paths, *parallel, *force); err != nil {
			logger.L().Error().Err(err).Msg("ingestion failed")
			return exitFail
		}
		logger.L().Info().Msg("ingestion completed successfully")

	case "api":
		logger.L().Info().Msg("starting API server")
		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Error().Err(err).Msg("app init error")
			return exitFail
		}
		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		fmt.Fprintf(stderr, "unknown mode %q\n", *mode)
		return exitUsage
	}
	return exitOK
}

// main is the entry point of the tradenorm application.
func main() {
	config.LoadConfig()
	logger.InitWith(config.AppConfig.Log.Level, config.AppConfig.Log.Pretty, os.Stdout)

	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
