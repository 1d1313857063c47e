package domain

import (
	"fmt"
	"time"
)

// DirectorySettings describes the institution being searched.
type DirectorySettings struct {
	// EmailDomain builds "<handle>@<domain>" addresses.
	EmailDomain string
}

// LDAPSettings configures the directory-protocol backend.
type LDAPSettings struct {
	Enabled            bool
	URL                string
	BaseDN             string
	ConnectTimeout     time.Duration
	OperationTimeout   time.Duration
	RetryInterval      time.Duration
	MaxRetries         int // 0 retries forever
	ProbeSize          int
	InsecureSkipVerify bool
}

// WebdirSettings configures the scraped people-search backend.
type WebdirSettings struct {
	Enabled bool
	URL     string
}

// LDAPCmdSettings configures the command-line / proxy backend.
type LDAPCmdSettings struct {
	Enabled        bool
	CommandEnabled bool
	Command        string
	ProxyEnabled   bool
	ProxyURL       string
	Timeout        time.Duration
}

// HTTPSettings configures the HTTP client shared by web backends.
type HTTPSettings struct {
	ConnectTimeout time.Duration
	Timeout        time.Duration
	Retries        int
	RateLimit      float64 // requests per second
	Burst          int
	UserAgent      string
}

// ServeSettings configures the lookup HTTP server.
type ServeSettings struct {
	Addr string
}

// Settings is the full application configuration.
type Settings struct {
	Directory DirectorySettings
	LDAP      LDAPSettings
	Webdir    WebdirSettings
	LDAPCmd   LDAPCmdSettings
	HTTP      HTTPSettings
	Serve     ServeSettings
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Directory: DirectorySettings{
			EmailDomain: "princeton.edu",
		},
		LDAP: LDAPSettings{
			Enabled:          true,
			URL:              "ldap://ldap.princeton.edu",
			BaseDN:           "o=Princeton University,c=US",
			ConnectTimeout:   2 * time.Second,
			OperationTimeout: time.Second,
			RetryInterval:    time.Second,
			ProbeSize:        MaxProbeSize,
		},
		Webdir: WebdirSettings{
			Enabled: true,
			URL:     "https://www.princeton.edu/search/people-advanced",
		},
		LDAPCmd: LDAPCmdSettings{
			Enabled:        true,
			CommandEnabled: true,
			Command:        "ldapsearch",
			ProxyEnabled:   true,
			ProxyURL:       "https://edutools.cs.princeton.edu/integration/ldap.cgi",
			Timeout:        15 * time.Second,
		},
		HTTP: HTTPSettings{
			ConnectTimeout: 3050 * time.Millisecond,
			Timeout:        15 * time.Second,
			Retries:        3,
			RateLimit:      5,
			Burst:          5,
			UserAgent:      "ptonppl",
		},
		Serve: ServeSettings{
			Addr: ":8080",
		},
	}
}

// MaxProbeSize bounds the entries sampled by the LDAP capability probe.
const MaxProbeSize = 100

// Validate checks settings that would make every lookup fail.
func (s Settings) Validate() error {
	if s.Directory.EmailDomain == "" {
		return fmt.Errorf("%w: directory.email_domain is empty", ErrConfig)
	}
	if !s.LDAP.Enabled && !s.Webdir.Enabled && !s.LDAPCmd.Enabled {
		return ErrNoBackends
	}
	if s.LDAP.Enabled && (s.LDAP.URL == "" || s.LDAP.BaseDN == "") {
		return fmt.Errorf("%w: ldap.url and ldap.base_dn are required", ErrConfig)
	}
	if s.LDAP.ProbeSize < 1 || s.LDAP.ProbeSize > MaxProbeSize {
		return fmt.Errorf("%w: ldap.probe_size must be between 1 and %d", ErrConfig, MaxProbeSize)
	}
	if s.LDAP.MaxRetries < 0 {
		return fmt.Errorf("%w: ldap.max_retries must not be negative", ErrConfig)
	}
	if s.Webdir.Enabled && s.Webdir.URL == "" {
		return fmt.Errorf("%w: webdir.url is required", ErrConfig)
	}
	if s.LDAPCmd.Enabled && !s.LDAPCmd.CommandEnabled && !s.LDAPCmd.ProxyEnabled {
		return fmt.Errorf("%w: ldapcmd needs the command or the proxy path", ErrConfig)
	}
	if s.HTTP.Retries < 0 {
		return fmt.Errorf("%w: http.retries must not be negative", ErrConfig)
	}
	return nil
}
