package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ipm-quickstart/config"
)

var configPath string
var deviceFile string
var tokenURL string
var logLevel string
var logFile string

func defaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return ""
	}
	return filepath.Join(base, "ipm-quickstart", "config.yaml")
}

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ipm-quickstart",
		Short:        "Chat on a shared channel from the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "Path to YAML config (missing file uses defaults)")
	cmd.PersistentFlags().StringVar(&deviceFile, "device-file", "", "Path to the persisted device identifier (overrides config)")
	cmd.PersistentFlags().StringVar(&tokenURL, "token-url", "", "Base URL of the token server (empty starts an embedded one)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append JSON logs to this file")
	cmd.AddCommand(newSendMessageCmd())
	cmd.AddCommand(newTokenServerCmd())
	cmd.AddCommand(newDeviceCmd())

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("device-file") {
		cfg.DeviceFile = deviceFile
	}
	if cmd.Flags().Changed("token-url") {
		cfg.TokenURL = tokenURL
	}
	return cfg, nil
}

// newLogger builds the process logger. console receives human-readable
// output when no log file is set; extra writers always receive JSON. The
// returned close func releases the log file.
func newLogger(console io.Writer, extra ...io.Writer) (zerolog.Logger, func() error, error) {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	closeFn := func() error { return nil }
	writers := append([]io.Writer(nil), extra...)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
		closeFn = f.Close
	} else if console != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen})
	}

	var w io.Writer = io.Discard
	if len(writers) > 0 {
		w = zerolog.MultiLevelWriter(writers...)
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), closeFn, nil
}
