// Package cli provides the ptonppl command line: the root lookup command
// and its config, serve, mcp, tui and version subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jlumbroso/ptonppl/internal/adapters/driving/httpapi"
	"github.com/jlumbroso/ptonppl/internal/core/ports/driving"
	"github.com/jlumbroso/ptonppl/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// Services holds the driving ports the commands use.
type Services struct {
	Lookup   driving.LookupService
	Settings driving.SettingsService

	// Command serves the ldapsearch proxy endpoint; nil disables it.
	Command httpapi.CommandSearcher

	// Gatherer is exposed on the metrics endpoint; nil disables it.
	Gatherer prometheus.Gatherer

	// LookupErr explains why Lookup is nil, typically invalid settings.
	LookupErr error

	// Close releases backend connections.
	Close func() error
}

// Bootstrap builds the services from the configuration directory.
type Bootstrap func(configDir string) (*Services, error)

var (
	services  *Services
	bootstrap Bootstrap

	verbose   bool
	configDir string
)

// SetServices installs ready-made services, bypassing the bootstrap.
func SetServices(s *Services) {
	services = s
}

// SetBootstrap sets the function that builds services on first use.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

var rootCmd = &cobra.Command{
	Use:   "ptonppl [query...]",
	Short: "Look up people in the campus directory",
	Long: `Look up the directory information (id, username, email, name) of a campus
person from a username, alias, email address or numeric id, using whichever
of the LDAP server, the web directory or the ldapsearch proxy answers.

Examples:
  ptonppl jdoe
  ptonppl -t csv jdoe asmith@princeton.edu 960000001
  ptonppl -t emails -i netids.txt`,
	Args:              cobra.ArbitraryArgs,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if services != nil && services.Close != nil {
			return services.Close()
		}
		return nil
	},
	RunE: runLookup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.ptonppl)")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if services != nil || bootstrap == nil {
		return nil
	}

	s, err := bootstrap(configDir)
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	services = s
	return nil
}

func lookupService() (driving.LookupService, error) {
	if services == nil {
		return nil, errors.New("lookup service not configured")
	}
	if services.Lookup == nil {
		if services.LookupErr != nil {
			return nil, services.LookupErr
		}
		return nil, errors.New("lookup service not configured")
	}
	return services.Lookup, nil
}

func settingsService() (driving.SettingsService, error) {
	if services == nil || services.Settings == nil {
		return nil, errors.New("settings service not configured")
	}
	return services.Settings, nil
}
