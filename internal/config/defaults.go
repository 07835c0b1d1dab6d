package config

const (
	defaultBaseURL        = "https://api.encore.example.com"
	defaultTimeoutSeconds = 60
	defaultMaxBufferMiB   = 2048
	defaultArtworkSide    = 3000
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Platform: Platform{
			BaseURL:        defaultBaseURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Uploads: Uploads{
			MaxBufferMiB: defaultMaxBufferMiB,
			ArtworkSide:  defaultArtworkSide,
		},
		Policy: Policy{
			FailOpenBlockedProbe: true,
		},
		Cache: Cache{
			Enabled: true,
			Path:    defaultCachePath(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
