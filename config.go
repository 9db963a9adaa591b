package sites

import "github.com/goliatone/go-sites/internal/runtimeconfig"

var (
	ErrLoggingProviderRequired   = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown    = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
	ErrResolverBaseDomainInvalid = runtimeconfig.ErrResolverBaseDomainInvalid
	ErrResolverCacheTTLInvalid   = runtimeconfig.ErrResolverCacheTTLInvalid
)

type (
	Config         = runtimeconfig.Config
	ResolverConfig = runtimeconfig.ResolverConfig
	CacheConfig    = runtimeconfig.CacheConfig
	Features       = runtimeconfig.Features
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
