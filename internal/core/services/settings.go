package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
	"github.com/jlumbroso/ptonppl/internal/core/ports/driven"
	"github.com/jlumbroso/ptonppl/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyEmailDomain = "directory.email_domain"

	keyLDAPEnabled          = "ldap.enabled"
	keyLDAPURL              = "ldap.url"
	keyLDAPBaseDN           = "ldap.base_dn"
	keyLDAPConnectTimeout   = "ldap.connect_timeout"
	keyLDAPOperationTimeout = "ldap.operation_timeout"
	keyLDAPRetryInterval    = "ldap.retry_interval"
	keyLDAPMaxRetries       = "ldap.max_retries"
	keyLDAPProbeSize        = "ldap.probe_size"
	keyLDAPInsecure         = "ldap.insecure_skip_verify"

	keyWebdirEnabled = "webdir.enabled"
	keyWebdirURL     = "webdir.url"

	keyCmdEnabled        = "ldapcmd.enabled"
	keyCmdCommand        = "ldapcmd.command"
	keyCmdCommandEnabled = "ldapcmd.command_enabled"
	keyCmdProxyURL       = "ldapcmd.proxy_url"
	keyCmdProxyEnabled   = "ldapcmd.proxy_enabled"
	keyCmdTimeout        = "ldapcmd.timeout"

	keyHTTPConnectTimeout = "http.connect_timeout"
	keyHTTPTimeout        = "http.timeout"
	keyHTTPRetries        = "http.retries"
	keyHTTPRateLimit      = "http.rate_limit"
	keyHTTPBurst          = "http.burst"
	keyHTTPUserAgent      = "http.user_agent"

	keyServeAddr = "serve.addr"
)

type valueKind int

const (
	kindString valueKind = iota
	kindBool
	kindInt
	kindFloat
	kindDuration
)

// settingKinds lists every recognised key with its value type.
var settingKinds = map[string]valueKind{
	keyEmailDomain:          kindString,
	keyLDAPEnabled:          kindBool,
	keyLDAPURL:              kindString,
	keyLDAPBaseDN:           kindString,
	keyLDAPConnectTimeout:   kindDuration,
	keyLDAPOperationTimeout: kindDuration,
	keyLDAPRetryInterval:    kindDuration,
	keyLDAPMaxRetries:       kindInt,
	keyLDAPProbeSize:        kindInt,
	keyLDAPInsecure:         kindBool,
	keyWebdirEnabled:        kindBool,
	keyWebdirURL:            kindString,
	keyCmdEnabled:           kindBool,
	keyCmdCommand:           kindString,
	keyCmdCommandEnabled:    kindBool,
	keyCmdProxyURL:          kindString,
	keyCmdProxyEnabled:      kindBool,
	keyCmdTimeout:           kindDuration,
	keyHTTPConnectTimeout:   kindDuration,
	keyHTTPTimeout:          kindDuration,
	keyHTTPRetries:          kindInt,
	keyHTTPRateLimit:        kindFloat,
	keyHTTPBurst:            kindInt,
	keyHTTPUserAgent:        kindString,
	keyServeAddr:            kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
// Keys that are absent or hold the wrong type keep their default.
func (s *SettingsService) Get() (domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := domain.Settings{
		Directory: domain.DirectorySettings{
			EmailDomain: s.getString(keyEmailDomain, d.Directory.EmailDomain),
		},
		LDAP: domain.LDAPSettings{
			Enabled:            s.getBool(keyLDAPEnabled, d.LDAP.Enabled),
			URL:                s.getString(keyLDAPURL, d.LDAP.URL),
			BaseDN:             s.getString(keyLDAPBaseDN, d.LDAP.BaseDN),
			ConnectTimeout:     s.getDuration(keyLDAPConnectTimeout, d.LDAP.ConnectTimeout),
			OperationTimeout:   s.getDuration(keyLDAPOperationTimeout, d.LDAP.OperationTimeout),
			RetryInterval:      s.getDuration(keyLDAPRetryInterval, d.LDAP.RetryInterval),
			MaxRetries:         s.getInt(keyLDAPMaxRetries, d.LDAP.MaxRetries),
			ProbeSize:          s.getInt(keyLDAPProbeSize, d.LDAP.ProbeSize),
			InsecureSkipVerify: s.getBool(keyLDAPInsecure, d.LDAP.InsecureSkipVerify),
		},
		Webdir: domain.WebdirSettings{
			Enabled: s.getBool(keyWebdirEnabled, d.Webdir.Enabled),
			URL:     s.getString(keyWebdirURL, d.Webdir.URL),
		},
		LDAPCmd: domain.LDAPCmdSettings{
			Enabled:        s.getBool(keyCmdEnabled, d.LDAPCmd.Enabled),
			CommandEnabled: s.getBool(keyCmdCommandEnabled, d.LDAPCmd.CommandEnabled),
			Command:        s.getString(keyCmdCommand, d.LDAPCmd.Command),
			ProxyEnabled:   s.getBool(keyCmdProxyEnabled, d.LDAPCmd.ProxyEnabled),
			ProxyURL:       s.getString(keyCmdProxyURL, d.LDAPCmd.ProxyURL),
			Timeout:        s.getDuration(keyCmdTimeout, d.LDAPCmd.Timeout),
		},
		HTTP: domain.HTTPSettings{
			ConnectTimeout: s.getDuration(keyHTTPConnectTimeout, d.HTTP.ConnectTimeout),
			Timeout:        s.getDuration(keyHTTPTimeout, d.HTTP.Timeout),
			Retries:        s.getInt(keyHTTPRetries, d.HTTP.Retries),
			RateLimit:      s.getFloat(keyHTTPRateLimit, d.HTTP.RateLimit),
			Burst:          s.getInt(keyHTTPBurst, d.HTTP.Burst),
			UserAgent:      s.getString(keyHTTPUserAgent, d.HTTP.UserAgent),
		},
		Serve: domain.ServeSettings{
			Addr: s.getString(keyServeAddr, d.Serve.Addr),
		},
	}

	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

// Set parses value for key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown key %q", domain.ErrConfig, key)
	}

	value = strings.TrimSpace(value)
	var typed any
	switch kind {
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false", domain.ErrConfig, key)
		}
		typed = b
	case kindInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s expects a non-negative integer", domain.ErrConfig, key)
		}
		typed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number", domain.ErrConfig, key)
		}
		typed = f
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s expects a duration such as 2s", domain.ErrConfig, key)
		}
		typed = value
	default:
		typed = value
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every recognised configuration key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the location of the configuration file.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}
