// Command ptonppl looks people up in the university directory.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jlumbroso/ptonppl/internal/adapters/driven/config/file"
	"github.com/jlumbroso/ptonppl/internal/adapters/driven/config/memory"
	"github.com/jlumbroso/ptonppl/internal/adapters/driving/cli"
	"github.com/jlumbroso/ptonppl/internal/connectors/httpclient"
	"github.com/jlumbroso/ptonppl/internal/connectors/ldap"
	"github.com/jlumbroso/ptonppl/internal/connectors/ldapcmd"
	"github.com/jlumbroso/ptonppl/internal/connectors/webdir"
	"github.com/jlumbroso/ptonppl/internal/core/ports/driven"
	"github.com/jlumbroso/ptonppl/internal/core/services"
	"github.com/jlumbroso/ptonppl/internal/logger"
	"github.com/jlumbroso/ptonppl/internal/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// bootstrap wires the configured backends into a lookup service.
// Invalid settings still yield a settings service so that the config
// commands can repair them.
func bootstrap(configDir string) (*cli.Services, error) {
	store, err := openStore(configDir)
	if err != nil {
		return nil, err
	}
	settingsService := services.NewSettingsService(store)

	settings, err := settingsService.Get()
	if err != nil {
		return &cli.Services{Settings: settingsService, LookupErr: err}, nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	client := httpclient.New(settings.HTTP)

	var (
		dirs    []driven.Directory
		command *ldapcmd.Connector
	)
	if settings.LDAP.Enabled {
		dirs = append(dirs, ldap.New(settings.LDAP, ldap.WithMetrics(m)))
	}
	if settings.Webdir.Enabled {
		dirs = append(dirs, webdir.New(settings.Webdir, settings.Directory.EmailDomain, client))
	}
	if settings.LDAPCmd.Enabled {
		command = ldapcmd.New(settings.LDAPCmd, settings.LDAP.URL, settings.LDAP.BaseDN, client)
		dirs = append(dirs, command)
	}

	svc := &cli.Services{
		Lookup: services.NewLookupService(
			settings.Directory.EmailDomain, dirs, services.WithLookupMetrics(m)),
		Settings: settingsService,
		Gatherer: reg,
		Close: func() error {
			var errs []error
			for _, d := range dirs {
				errs = append(errs, d.Close())
			}
			client.CloseIdleConnections()
			return errors.Join(errs...)
		},
	}
	if command != nil {
		svc.Command = command
	}
	return svc, nil
}

// openStore opens the configuration file. Without a home directory to hold
// it, settings live in memory for the duration of the run.
func openStore(configDir string) (driven.ConfigStore, error) {
	if configDir == "" {
		if _, err := os.UserHomeDir(); err != nil {
			logger.Warn("no home directory, using default settings: %v", err)
			return memory.NewConfigStore(), nil
		}
	}
	return file.NewConfigStore(configDir)
}
