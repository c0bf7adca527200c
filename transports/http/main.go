// Command http serves the Gemini proxy locally on a fasthttp server.
// It exposes the same function paths a Netlify deployment does, plus /health and /metrics.
package main

import (
	"os"

	geminiproxy "github.com/maximhq/geminiproxy"
	"github.com/maximhq/geminiproxy/schemas"
	"github.com/maximhq/geminiproxy/transports/http/handlers"
	"github.com/maximhq/geminiproxy/transports/lib"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/automaxprocs/maxprocs"
)

var envFile string

// newRootCommand builds the command with every flag bound into v, so flags win over the environment.
func newRootCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gemini-proxy",
		Short: "Local server for the Gemini proxy function",
		Long: `gemini-proxy serves the Gemini proxy function on a local fasthttp server.

The upstream credential is read from GEMINI_API_KEY (or the variable named by
GEMINI_API_KEY_ENV) on every request. Other settings come from the environment,
an optional .env file and the flags below.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v)
		},
	}

	flags := cmd.Flags()
	flags.String("host", "localhost", "Host to bind the server to")
	flags.String("port", "8888", "Port to run the server on")
	flags.String("log-level", string(schemas.LogLevelInfo), "Logger level (debug, info, warn, error)")
	flags.String("log-style", string(schemas.LoggerOutputTypeJSON), "Logger output type (json or pretty)")
	flags.StringVar(&envFile, "env-file", ".env", "Path to a dotenv file, ignored when missing")

	// BindPFlag only fails on a nil flag.
	_ = v.BindPFlag("host", flags.Lookup("host"))
	_ = v.BindPFlag("port", flags.Lookup("port"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log_style", flags.Lookup("log-style"))

	cmd.CompletionOptions.DisableDefaultCmd = true
	return cmd
}

func run(v *viper.Viper) error {
	config, err := lib.LoadConfig(v, envFile)
	if err != nil {
		return err
	}

	logger := lib.NewLogger(config)
	handlers.SetLogger(logger)

	if _, err := maxprocs.Set(maxprocs.Logger(logger.Debug)); err != nil {
		logger.Warn("failed to set GOMAXPROCS: %v", err)
	}

	server := handlers.NewProxyHTTPServer(config)
	if err := server.Bootstrap(); err != nil {
		return err
	}

	return server.Start()
}

func main() {
	if err := newRootCommand(lib.NewViper()).Execute(); err != nil {
		geminiproxy.NewDefaultLogger(schemas.LogLevelInfo).Error("gemini proxy exited: %v", err)
		os.Exit(1)
	}
}
