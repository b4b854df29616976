package cmd

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog"
	"github.com/spf13/cobra"
)

// cmdConfig holds all configuration for the command line
type cmdConfig struct {
	Format string `env:"LOG_FORMAT" env-default:"text" env-description:"Log output format (text or json)"`
	Level  string `env:"LOG_LEVEL" env-default:"info" env-description:"Log level (debug, info, warn, error)"`
}

var rootCmd = &cobra.Command{
	Use:   "docbridge",
	Short: "Convert documents between Word, PDF, text, HTML and Markdown",
	Long: `DocBridge converts documents between docx, doc, pdf, txt, html, md, rtf and odt.

Each conversion tries an ordered chain of strategies: in-process libraries first,
then external tools such as LibreOffice or docx2pdf. A strategy only counts
as successful when the output file really exists.

Run "docbridge serve" to expose the conversions as MCP tools.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadLogger reads LOG_FORMAT and LOG_LEVEL. debug forces the debug level.
func loadLogger(debug bool) (*slog.Logger, error) {
	var conf cmdConfig
	if err := cleanenv.ReadEnv(&conf); err != nil {
		return nil, fmt.Errorf("load command config: %w", err)
	}
	if debug {
		conf.Level = "debug"
	}
	return createLogger(conf), nil
}

// createLogger creates a slog logger from the configuration. Logs always go to stderr
// so they never mix with the stdio transport.
func createLogger(conf cmdConfig) *slog.Logger {
	var level slog.Level
	switch conf.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var zerologLogger zerolog.Logger
	if conf.Format == "json" {
		zerologLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		zerologLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()
	}

	handler := slogzerolog.Option{
		Level:  level,
		Logger: &zerologLogger,
	}.NewZerologHandler()

	logger := slog.New(handler)

	log.SetFlags(0)
	slog.SetDefault(logger)

	return logger
}
