package core

import (
	"fmt"
	"strings"
)

type CacheConfig struct {
	KeyPrefix string `koanf:"key_prefix" mapstructure:"key_prefix"`
	// UserScopedOnBehalfOf partitions on-behalf-of cache entries per user.
	// Off by default: the reference behavior shares one entry per
	// (authority, resource) pair across all delegated users.
	UserScopedOnBehalfOf bool `koanf:"user_scoped_on_behalf_of" mapstructure:"user_scoped_on_behalf_of"`
}

type Config struct {
	ServiceName string      `koanf:"service_name" mapstructure:"service_name"`
	Cache       CacheConfig `koanf:"cache" mapstructure:"cache"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "partner-center-bot",
		Cache: CacheConfig{
			KeyPrefix: DefaultCacheKeyPrefix,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	return nil
}
