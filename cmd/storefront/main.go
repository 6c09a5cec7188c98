// Command storefront is a command-line client for the storefront backends.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lokis-perfume/storefront/client"
)

const defaultTimeout = 15 * time.Second

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		ev := log.Error().Err(err)
		if apiErr, ok := client.AsAPIError(err); ok {
			ev = ev.Str("code", apiErr.Code).Int("status", apiErr.Status)
		}
		ev.Msg("command failed")
		os.Exit(1)
	}
}

// app holds the global flags shared by every subcommand.
type app struct {
	debug       bool
	envFile     string
	sessionFile string
	token       string
	timeout     time.Duration
	metricsAddr string

	metricsSrv *http.Server
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Command-line client for the storefront users, products and search APIs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        cmd.ErrOrStderr(),
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})
			if a.debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			if a.envFile != "" {
				// Variables already set in the environment win over the file.
				if err := godotenv.Load(a.envFile); err != nil {
					return fmt.Errorf("load env file: %w", err)
				}
				log.Debug().Str("file", a.envFile).Msg("loaded env file")
			}
			if a.metricsAddr != "" {
				return a.startMetrics(a.metricsAddr)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.stopMetrics()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&a.debug, "debug", "d", false, "Log every HTTP exchange")
	flags.StringVar(&a.envFile, "env-file", "", "Load base URLs and other settings from a dotenv file")
	flags.StringVar(&a.sessionFile, "session-file", defaultSessionPath(), "YAML file holding the login session")
	flags.StringVar(&a.token, "token", "", "Bearer token (overrides the session file)")
	flags.DurationVar(&a.timeout, "timeout", defaultTimeout, "Deadline for each command")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the command runs")

	rootCmd.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newMeCmd(a),
		newUserCmd(a),
		newProductsCmd(a),
		newPurchaseCmd(a),
		newSearchCmd(a),
		newFlushCacheCmd(a),
		newHealthCmd(a),
		newOverviewCmd(a),
	)
	return rootCmd
}

// newClient builds an SDK client from the environment plus the global flags.
func (a *app) newClient(opts ...client.Option) (*client.Client, error) {
	opts = append([]client.Option{client.WithLogger(log.Logger)}, opts...)
	if a.debug {
		opts = append(opts, client.WithDebugLogging(true), client.WithHook(client.LogHook(log.Logger)))
	}
	if a.metricsAddr != "" {
		opts = append(opts, client.WithMetrics(nil))
	}
	return client.NewFromEnv(opts...)
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

// bearer returns the --token flag or the token of the saved session.
func (a *app) bearer() (string, error) {
	if a.token != "" {
		return a.token, nil
	}
	s, err := loadSession(a.sessionFile)
	if err != nil {
		return "", err
	}
	if s == nil || s.Token == "" {
		return "", errors.New("not logged in: run \"storefront login\" or pass --token")
	}
	return s.Token, nil
}

func (a *app) startMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.metricsSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")
	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}(a.metricsSrv)
	return nil
}

func (a *app) stopMetrics() error {
	if a.metricsSrv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := a.metricsSrv.Shutdown(ctx)
	a.metricsSrv = nil
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
