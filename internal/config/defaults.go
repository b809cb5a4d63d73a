package config

import (
	"github.com/nycstandup/showcatalog/internal/fetch"
)

const (
	defaultDBPath          = "~/.local/share/showcatalog/shows.db"
	defaultLockPath        = "~/.local/share/showcatalog/scrape.lock"
	defaultTimezone        = "America/New_York"
	defaultLogLevel        = "info"
	defaultAPIBind         = "127.0.0.1:3001"
	defaultCourtesyDelayMS = 1000
	defaultCountry         = "us"
	defaultRetentionDays   = 30
	maxRetentionDays       = 3650
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		DBPath:   defaultDBPath,
		LockPath: defaultLockPath,
		Timezone: defaultTimezone,
		LogLevel: defaultLogLevel,
		Fetch: Fetch{
			TimeoutSeconds:  int(fetch.DefaultTimeout.Seconds()),
			MinBodyBytes:    fetch.DefaultMinBodyBytes,
			MaxBodyBytes:    fetch.DefaultMaxBodyBytes,
			UserAgent:       fetch.DefaultUserAgent,
			CourtesyDelayMS: defaultCourtesyDelayMS,
			BlockSignatures: append([]string(nil), fetch.DefaultBlockSignatures...),
		},
		Browser: Browser{
			Country:                  defaultCountry,
			Headless:                 true,
			NavigationTimeoutSeconds: int(fetch.DefaultNavigationTimeout.Seconds()),
		},
		Retention: Retention{
			Days: defaultRetentionDays,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Run: Run{
			KeepCatalogOnEmpty: true,
		},
	}
}
