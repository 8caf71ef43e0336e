package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/msealand/fastuiupdates/internal/app"
	"github.com/msealand/fastuiupdates/internal/config"
	"github.com/msealand/fastuiupdates/internal/logger"
	"github.com/msealand/fastuiupdates/internal/metrics"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// runtimeApp is the part of *app.App the commands depend on.
type runtimeApp interface {
	Run(ctx context.Context) error
	Close()
}

// Seams replaced by tests.
var (
	loadConfig       = config.Load
	registerMetrics  = metrics.Register
	newSignalContext = func(parent context.Context) (context.Context, context.CancelFunc) {
		return signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	}
	newRuntime = func(cfg *config.Config, out io.Writer) (runtimeApp, error) {
		a, err := app.New(cfg, out)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("fatal")
		os.Exit(1)
	}
}

// newRootCmd builds and returns the root cobra command. Extracted from main so
// that tests can invoke it directly without spawning a subprocess.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fastui",
		Short: "Increment a shared counter flat out and sample it on a fixed interval",
		Long: `fastui runs a producer that increments a shared counter as fast as the
scheduler allows and a sampler that reads it every update interval, printing
the counter value and the number of samples taken.

Configuration comes from FASTUI_* environment variables and the optional YAML
file named by FASTUI_CONFIG_FILE.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runFastUI,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Start the producer and sampler (same as running without a subcommand)",
		RunE:  runFastUI,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "healthcheck",
		Short: "Query /readyz of a running instance (for Docker HEALTHCHECK)",
		RunE:  runHealthcheck,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fastui %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	return rootCmd
}

func runFastUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	initLogging(cfg.LogLevel, cfg.LogFormat)

	registerMetrics()

	ctx, cancel := newSignalContext(context.Background())
	defer cancel()

	out := io.Writer(os.Stdout)
	if cmd != nil {
		out = cmd.OutOrStdout()
	}

	a, err := newRuntime(cfg, out)
	if err != nil {
		return fmt.Errorf("fastui init: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}

func runHealthcheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.MetricsAddr == "" {
		return fmt.Errorf("healthcheck: FASTUI_METRICS_ADDR is not set")
	}

	initLogging("error", cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return checkReady(ctx, readyURL(cfg.MetricsAddr))
}

// readyURL turns a listen address into a URL a local client can reach.
func readyURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/readyz"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + "/readyz"
}

func checkReady(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("healthcheck: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("healthcheck: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("healthcheck: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func initLogging(level string, format string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	redacted := logger.NewRedactWriter(os.Stderr)
	if format == "text" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: redacted})
	} else {
		log.Logger = zerolog.New(redacted).With().Timestamp().Logger()
	}

	switch level {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
