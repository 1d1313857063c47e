package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jlumbroso/ptonppl/internal/adapters/driving/httpapi"
	"github.com/jlumbroso/ptonppl/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve lookups over HTTP",
	Long: `Start an HTTP server exposing:

  GET /v1/lookup/{query}    JSON record for a query
  GET /ldapsearch?uid=jdoe  raw ldapsearch output, the format the
                            ldapcmd backend's proxy path consumes
  GET /metrics              Prometheus metrics
  GET /healthz              configured backends

The listen address defaults to serve.addr from the configuration.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default serve.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	lookup, err := lookupService()
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		if svc, err := settingsService(); err == nil {
			if s, err := svc.Get(); err == nil {
				addr = s.Serve.Addr
			}
		}
	}
	if addr == "" {
		return errors.New("no listen address: pass --addr or set serve.addr")
	}

	opts := []httpapi.Option{}
	if services.Command != nil {
		opts = append(opts, httpapi.WithCommand(services.Command))
	}
	if services.Gatherer != nil {
		opts = append(opts, httpapi.WithGatherer(services.Gatherer))
	}

	handler := httpapi.NewHandler(lookup, opts...)
	server := httpapi.NewServer(addr, handler.Routes())

	logger.Info("listening on %s", addr)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving lookups on http://%s\n", displayAddr(addr))
	return server.Run(cmd.Context())
}

// displayAddr adds a host to ":port" addresses.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
