package config

// MainConfig is the on-disk layout of config.toml.
type MainConfig struct {
	General GeneralConfig `toml:"general"`
	Backend BackendConfig `toml:"backend"`
	Console ConsoleConfig `toml:"console"`
}

// GeneralConfig holds process wide settings.
type GeneralConfig struct {
	// LogLevel is one of debug, info, warn or error
	LogLevel      string `toml:"log_level"       comment:"debug, info, warn or error"`
	LogFile       string `toml:"log_file"`
	LogFileSize   int    `toml:"log_file_size"   comment:"megabytes before rotation"`
	LogFileCount  uint8  `toml:"log_file_count"`
	LogCompress   bool   `toml:"log_compress"`
	LogColorize   bool   `toml:"log_colorize"`
	LogToFileOnly bool   `toml:"log_to_file_only"`
	TimeFormat    string `toml:"time_format"`
	TimeZone      string `toml:"time_zone"`
	WebPort       string `toml:"web_port"`
	// WorkerLookups sizes the pool that loads related lookups for dialogs
	WorkerLookups int `toml:"worker_lookups"`
	// StatsCron is the cron spec of the backend stats log job. Empty disables it.
	StatsCron string `toml:"stats_cron"`
	// EnableMetrics exposes /metrics
	EnableMetrics bool `toml:"enable_metrics"`
	// Debug enables gin debug mode and pprof routes
	Debug bool `toml:"debug"`
}

// BackendConfig describes the admin REST backend.
type BackendConfig struct {
	BaseURL string `toml:"base_url" comment:"root of the REST backend, resource endpoints are appended"`
	// TimeoutSeconds is the per request timeout
	TimeoutSeconds int `toml:"timeout_seconds"`
	// RateLimit is the sustained number of requests per second. 0 disables limiting.
	RateLimit      int  `toml:"rate_limit"`
	RateLimitBurst int  `toml:"rate_limit_burst"`
	// CircuitBreakerFailures is the number of consecutive failures which open the breaker. 0 disables it.
	CircuitBreakerFailures int `toml:"circuit_breaker_failures"`
	// CircuitBreakerTimeoutSeconds is how long an open breaker rejects calls.
	CircuitBreakerTimeoutSeconds int    `toml:"circuit_breaker_timeout_seconds"`
	UserAgent                    string `toml:"user_agent"`
	DisableTLSVerify             bool   `toml:"disable_tls_verify"`
	// ForwardCookies lists the browser cookies passed to the backend. Empty forwards all of them.
	ForwardCookies []string `toml:"forward_cookies"`
}

// ConsoleConfig holds settings of the admin console UI.
type ConsoleConfig struct {
	Title           string `toml:"title"`
	DefaultPageSize int    `toml:"default_page_size" comment:"one of 5, 10, 20 or 50"`
	// SessionTTLMinutes is how long an idle browser session keeps its page state
	SessionTTLMinutes int    `toml:"session_ttl_minutes"`
	MaxSessions       int    `toml:"max_sessions"`
	CookieName        string `toml:"cookie_name"`
	CookieSecure      bool   `toml:"cookie_secure"`
}
