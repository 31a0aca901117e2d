package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/spance/iphone-use-mcp/constants"
	"github.com/spance/iphone-use-mcp/phoneagent"
	"github.com/spance/iphone-use-mcp/phoneagent/definitions"
	"github.com/spance/iphone-use-mcp/phoneagent/ios"
	"github.com/spance/iphone-use-mcp/phoneagent/mcpserver"
	"github.com/spance/iphone-use-mcp/phoneagent/monitoring"
	"github.com/spance/iphone-use-mcp/utils"
)

var rootCmd = &cobra.Command{
	Use:   "iphone-use-mcp",
	Short: "iPhone-use - MCP server for iPhone automation",
	Long: `iPhone-use exposes an iPhone to MCP clients over stdio.
The device is driven through an Appium server running the XCUITest driver.`,
	Example: `  # Serve a device
  TARGET_IPHONE_UDID=00008110-000A1234 iphone-use-mcp

  # Use a remote Appium server and expose metrics
  iphone-use-mcp --udid 00008110-000A1234 --appium-url http://192.168.1.10:4723 --metrics-addr :9102

  # List supported app names
  iphone-use-mcp --list-apps

  # Check Appium status
  iphone-use-mcp --appium-status

  # Save a raw and a compressed screenshot
  iphone-use-mcp snapshot --out ./shots

  # Compare palette sizes for a PNG
  iphone-use-mcp compress screen.png`,
	SilenceUsage: true,
	RunE:         runServer,
}

var config = &definitions.Config{}

var (
	listApps     bool
	appiumStatus bool
)

func init() {
	cfg, err := definitions.LoadConfig()
	if err != nil {
		// flags still work; env values are ignored
		log.Warn().Err(err).Msg("ignoring environment configuration")
		cfg = &definitions.Config{AppiumURL: "http://127.0.0.1:4723", SessionTimeout: 10 * time.Minute, CommandTimeout: 2 * time.Minute}
	}

	flags := rootCmd.PersistentFlags()

	// Device options
	flags.StringVar(&config.DeviceUDID, "udid", cfg.DeviceUDID,
		"UDID of the target iPhone (env TARGET_IPHONE_UDID)")

	flags.StringVar(&config.AppiumURL, "appium-url", cfg.AppiumURL,
		"Appium server URL (env APPIUM_URL)")

	flags.StringVar(&config.DeviceName, "device-name", cfg.DeviceName,
		"Device name capability (env IPHONE_DEVICE_NAME)")

	flags.StringVar(&config.PlatformVersion, "platform-version", cfg.PlatformVersion,
		"Platform version capability (env IPHONE_PLATFORM_VERSION)")

	flags.IntVar(&config.NewCommandTimeout, "new-command-timeout", cfg.NewCommandTimeout,
		"Seconds Appium waits for a command before ending the session, 0 disables (env IPHONE_USE_NEW_COMMAND_TIMEOUT)")

	// Timeouts
	flags.DurationVar(&config.SessionTimeout, "session-timeout", cfg.SessionTimeout,
		"Timeout for establishing the device session, 0 disables (env IPHONE_USE_SESSION_TIMEOUT)")

	flags.DurationVar(&config.CommandTimeout, "command-timeout", cfg.CommandTimeout,
		"Timeout for one device command, 0 disables (env IPHONE_USE_COMMAND_TIMEOUT)")

	// Other options
	flags.StringVar(&config.MetricsAddr, "metrics-addr", cfg.MetricsAddr,
		"Serve Prometheus metrics on this address, e.g. :9102 (env IPHONE_USE_METRICS_ADDR)")

	flags.BoolVar(&config.Debug, "debug", cfg.Debug,
		"Enable debug logging (env IPHONE_USE_DEBUG)")

	rootCmd.Flags().BoolVar(&listApps, "list-apps", false,
		"List supported app names and exit")

	rootCmd.Flags().BoolVar(&appiumStatus, "appium-status", false,
		"Show Appium server status and exit")

	rootCmd.PersistentPreRunE = validateArgs

	rootCmd.AddCommand(snapshotCmd, compressCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("iphone-use-mcp failed")
		os.Exit(1)
	}
}

func validateArgs(cmd *cobra.Command, args []string) error {
	setupLogging(config.Debug)

	if !strings.HasPrefix(config.AppiumURL, "http://") && !strings.HasPrefix(config.AppiumURL, "https://") {
		return errors.New("invalid appium url: must start with http:// or https://")
	}
	if config.SessionTimeout < 0 || config.CommandTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

// setupLogging sends all logs to stderr; stdout belongs to the protocol stream.
func setupLogging(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log.Logger
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if listApps {
		printSupportedApps()
		return nil
	}

	if appiumStatus {
		return printAppiumStatus(ctx)
	}

	log.Debug().Str("config", utils.JsonString(config)).Msg("configuration")

	metrics := monitoring.NewMetrics()
	manager := phoneagent.NewSessionManager(config, phoneagent.NewAppiumConnector(config), metrics)
	dispatcher := phoneagent.NewDispatcher(manager, metrics)

	if config.MetricsAddr != "" {
		go serveMetrics(ctx, config.MetricsAddr, metrics)
	}

	if config.DeviceUDID == "" {
		// the server still starts; every action reports the missing setting
		log.Warn().Str("setting", definitions.DeviceUDIDEnv).Msg(definitions.DeviceUDIDGuidance)
	}

	err := mcpserver.NewServer(dispatcher).ServeStdio(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func printSupportedApps() {
	log.Info().Msg("Supported app names, open_app_by_bundle_id also accepts any bundle id:")
	for _, alias := range constants.SupportedAliases() {
		bundleID, _ := constants.GetBundleIDByAlias(alias)
		aliases, _ := constants.GetAliasesByBundleID(bundleID)
		log.Info().Str("bundle_id", bundleID).Strs("aliases", aliases).Msgf("- %s", alias)
	}
}

func printAppiumStatus(ctx context.Context) error {
	log.Info().Str("url", config.AppiumURL).Msg("Checking Appium status...")
	status, err := ios.NewConnector(config.AppiumURL, config.CommandTimeout).Status(ctx)
	if err != nil {
		log.Error().Err(err).Msg("❌ Appium is not ready")
		return err
	}
	log.Info().Msg("✅ Appium is ready")
	log.Info().Msg(utils.JsonIndent(status))
	return nil
}

func serveMetrics(ctx context.Context, addr string, metrics *monitoring.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("metrics server failed")
	}
}
