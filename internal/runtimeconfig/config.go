package runtimeconfig

import (
	"errors"
	"strings"
	"time"
)

// ErrLoggingProviderRequired indicates the logging feature is on without a provider.
var ErrLoggingProviderRequired = errors.New("sites config: logging provider is required when logging feature is enabled")

// ErrLoggingProviderUnknown indicates an unsupported logging provider name.
var ErrLoggingProviderUnknown = errors.New("sites config: logging provider is invalid")

// ErrLoggingLevelInvalid indicates an unsupported logging level.
var ErrLoggingLevelInvalid = errors.New("sites config: logging level is invalid")

// ErrLoggingFormatInvalid indicates an unsupported logging output format.
var ErrLoggingFormatInvalid = errors.New("sites config: logging format is invalid")

// ErrResolverBaseDomainInvalid indicates a malformed platform base domain.
var ErrResolverBaseDomainInvalid = errors.New("sites config: resolver base domain must be a bare host name")

// ErrResolverCacheTTLInvalid indicates a negative resolver cache TTL.
var ErrResolverCacheTTLInvalid = errors.New("sites config: resolver cache ttl must be zero or positive")

// Config aggregates feature flags and adapter bindings for the sites module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled  bool
	Resolver ResolverConfig
	Cache    CacheConfig
	Features Features
	Logging  LoggingConfig
}

// ResolverConfig captures host-to-tenant resolution behaviour.
type ResolverConfig struct {
	// BaseDomain is the platform's shared domain; subdomain labels under it
	// resolve to tenant slugs. Example: "sites.example.com".
	BaseDomain string
	// ReservedLabels are subdomain labels that never resolve to a tenant.
	ReservedLabels []string
	// StripWWW treats "www.<host>" as "<host>" before resolution.
	StripWWW bool
}

// CacheConfig captures resolver cache behaviour.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// Features toggles module functionality.
type Features struct {
	Revisions bool
	Logger    bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns a configuration with sensible defaults: revisions on,
// resolver cache on with a five minute TTL, logging off.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Resolver: ResolverConfig{
			StripWWW: true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: 5 * time.Minute,
		},
		Features: Features{
			Revisions: true,
		},
	}
}

var validLoggingProviders = map[string]bool{
	"gologger": true,
	"custom":   true,
}

var validLoggingLevels = map[string]bool{
	"": true, "trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true,
}

var validLoggingFormats = map[string]bool{
	"": true, "json": true, "console": true, "pretty": true,
}

// Validate checks cross-field consistency before the container is built.
func (c Config) Validate() error {
	if c.Cache.DefaultTTL < 0 {
		return ErrResolverCacheTTLInvalid
	}

	base := strings.TrimSpace(c.Resolver.BaseDomain)
	if base != "" {
		if strings.Contains(base, "/") || strings.Contains(base, ":") || strings.Contains(base, " ") {
			return ErrResolverBaseDomainInvalid
		}
	}

	if c.Features.Logger {
		provider := strings.ToLower(strings.TrimSpace(c.Logging.Provider))
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !validLoggingProviders[provider] {
			return ErrLoggingProviderUnknown
		}
		if !validLoggingLevels[strings.ToLower(strings.TrimSpace(c.Logging.Level))] {
			return ErrLoggingLevelInvalid
		}
		if !validLoggingFormats[strings.ToLower(strings.TrimSpace(c.Logging.Format))] {
			return ErrLoggingFormatInvalid
		}
	}

	return nil
}
