// Package config defines process configuration for the raffle client, CLI
// and stub backend.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file and RAFFLE_* env vars.
// - Errors are wrapped with this package's sentinel kinds.
package config

// Token store drivers.
const (
	TokenStoreNone   = "none"
	TokenStoreMemory = "memory"
	TokenStoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" json:"log_level"`

	// APIBase is prefixed verbatim to every endpoint path.
	APIBase string `koanf:"api_base" json:"api_base"`

	// TokenKey is the storage key holding the bearer token.
	TokenKey string `koanf:"token_key" json:"token_key"`

	// TokenStore selects the token storage provider: none, memory or sqlite.
	TokenStore string `koanf:"token_store" json:"token_store"`

	// TokenStorePath is the SQLite database file used by the sqlite driver.
	TokenStorePath string `koanf:"token_store_path" json:"token_store_path"`

	// Addr is the stub backend listen address, e.g. ":8000".
	Addr string `koanf:"addr" json:"addr"`

	// AdminEmail, AdminPassword and AdminFullName seed the stub backend's
	// administrator account. Seeding is skipped when the password is empty.
	AdminEmail    string `koanf:"admin_email" json:"admin_email"`
	AdminPassword string `koanf:"admin_password" json:"admin_password"`
	AdminFullName string `koanf:"admin_full_name" json:"admin_full_name"`

	// FrontendURL prefixes the verification links the stub backend logs.
	FrontendURL string `koanf:"frontend_url" json:"frontend_url"`

	// PageSize is the stub backend's list page size.
	PageSize int `koanf:"page_size" json:"page_size"`

	// NotifyWorkers is the number of background notification workers in the
	// stub backend. Zero delivers notifications inside the request.
	NotifyWorkers int `koanf:"notify_workers" json:"notify_workers"`

	// NotifyQueueSize bounds the pending notification queue.
	NotifyQueueSize int `koanf:"notify_queue_size" json:"notify_queue_size"`

	// SeedParticipants is the number of fake verified participants the stub
	// backend creates at startup.
	SeedParticipants int `koanf:"seed_participants" json:"seed_participants"`

	// Site holds page metadata for the web front end.
	Site Site `koanf:"site" json:"site"`
}

// Site is the page head metadata handed to the rendering layer.
type Site struct {
	Title       string `koanf:"title" json:"title"`
	Description string `koanf:"description" json:"description"`
	Charset     string `koanf:"charset" json:"charset"`
	Viewport    string `koanf:"viewport" json:"viewport"`
	Favicon     string `koanf:"favicon" json:"favicon"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		APIBase:         "http://localhost:8000/api",
		TokenKey:        "access_token",
		TokenStore:      TokenStoreSQLite,
		TokenStorePath:  "raffle.db",
		Addr:            ":8000",
		AdminEmail:      "admin@example.com",
		AdminFullName:   "Administrator",
		FrontendURL:     "http://localhost:3000",
		PageSize:        10,
		NotifyWorkers:   2,
		NotifyQueueSize: 1000,
		Site: Site{
			Title:       "Valentine's Raffle - CTS Turismo",
			Description: "Join the CTS Turismo Valentine's raffle and win a romantic two-night stay",
			Charset:     "utf-8",
			Viewport:    "width=device-width, initial-scale=1",
			Favicon:     "/favicon.ico",
		},
	}
}
