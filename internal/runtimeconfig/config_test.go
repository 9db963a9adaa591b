package runtimeconfig_test

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-sites/internal/runtimeconfig"
)

func TestConfigValidate_DefaultsAreValid(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RejectsNegativeCacheTTL(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.DefaultTTL = -time.Second

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrResolverCacheTTLInvalid) {
		t.Fatalf("expected ErrResolverCacheTTLInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsMalformedBaseDomain(t *testing.T) {
	for _, base := range []string{"sites.example.com/path", "sites.example.com:8080", "sites example.com"} {
		cfg := runtimeconfig.DefaultConfig()
		cfg.Resolver.BaseDomain = base

		err := cfg.Validate()
		if !errors.Is(err, runtimeconfig.ErrResolverBaseDomainInvalid) {
			t.Fatalf("base %q: expected ErrResolverBaseDomainInvalid, got %v", base, err)
		}
	}
}

func TestConfigValidate_AllowsBareBaseDomain(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Resolver.BaseDomain = "sites.example.com"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresLoggingProviderWhenFeatureEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = ""

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingLevelAndFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "verbose"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}

	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "xml"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}
