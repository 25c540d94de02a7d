// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging level, body limits); AppConfig is everything specific to
// TaskDeck itself. Values are loaded in LoadConfig from config files,
// TASKDECK_* environment variables, or command-line flags.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Token configuration
	JWTSecret       string        // HMAC secret for signing access/refresh tokens
	AccessTokenTTL  time.Duration // Access token lifetime
	RefreshTokenTTL time.Duration // Refresh token lifetime

	// Login throttling
	LoginRatePerMinute int // Max login attempts per minute per client (0 disables)

	// Audit logging
	AuditLog string // "all" (db+log), "db", "log", or "off"
}
