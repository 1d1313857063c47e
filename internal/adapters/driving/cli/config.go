package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change the backends, timeouts and HTTP settings stored in
~/.ptonppl/config.toml (or the directory given with --config).`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Run 'ptonppl config keys' for the list of keys.

Examples:
  ptonppl config set ldap.enabled false
  ptonppl config set ldap.retry_interval 500ms
  ptonppl config set http.retries 5`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := settingsService()
		if err != nil {
			return err
		}
		cmd.Println(svc.Path())
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configuration keys",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := settingsService()
		if err != nil {
			return err
		}
		for _, k := range svc.Keys() {
			cmd.Println(k)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}

	settings, validateErr := svc.Get()

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Directory]")
	cmd.Printf("  Email domain: %s\n", settings.Directory.EmailDomain)
	cmd.Println()

	cmd.Printf("[%s]\n", domain.BackendLDAP.Description())
	cmd.Printf("  Enabled: %s\n", yesNo(settings.LDAP.Enabled))
	cmd.Printf("  URL: %s\n", settings.LDAP.URL)
	cmd.Printf("  Base DN: %s\n", settings.LDAP.BaseDN)
	cmd.Printf("  Timeouts: connect %s, operation %s\n", settings.LDAP.ConnectTimeout, settings.LDAP.OperationTimeout)
	cmd.Printf("  Retry: every %s, %s\n", settings.LDAP.RetryInterval, retries(settings.LDAP.MaxRetries))
	cmd.Println()

	cmd.Printf("[%s]\n", domain.BackendWebdir.Description())
	cmd.Printf("  Enabled: %s\n", yesNo(settings.Webdir.Enabled))
	cmd.Printf("  URL: %s\n", settings.Webdir.URL)
	cmd.Println()

	cmd.Printf("[%s]\n", domain.BackendLDAPCmd.Description())
	cmd.Printf("  Enabled: %s\n", yesNo(settings.LDAPCmd.Enabled))
	cmd.Printf("  Command: %s (%s)\n", settings.LDAPCmd.Command, enabledDisabled(settings.LDAPCmd.CommandEnabled))
	cmd.Printf("  Proxy: %s (%s)\n", settings.LDAPCmd.ProxyURL, enabledDisabled(settings.LDAPCmd.ProxyEnabled))
	cmd.Printf("  Timeout: %s\n", settings.LDAPCmd.Timeout)
	cmd.Println()

	cmd.Println("[HTTP]")
	cmd.Printf("  Timeouts: connect %s, request %s\n", settings.HTTP.ConnectTimeout, settings.HTTP.Timeout)
	cmd.Printf("  Retries: %d\n", settings.HTTP.Retries)
	cmd.Printf("  Rate limit: %.1f/s (burst %d)\n", settings.HTTP.RateLimit, settings.HTTP.Burst)
	cmd.Printf("  User agent: %s\n", settings.HTTP.UserAgent)
	cmd.Println()

	cmd.Println("[Serve]")
	cmd.Printf("  Address: %s\n", settings.Serve.Addr)
	cmd.Println()

	if validateErr != nil {
		cmd.Printf("Warning: %v\n", validateErr)
		cmd.Println("Run 'ptonppl config set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}
	if err := svc.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func enabledDisabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func retries(n int) string {
	if n == 0 {
		return "until success"
	}
	return fmt.Sprintf("at most %d times", n)
}
