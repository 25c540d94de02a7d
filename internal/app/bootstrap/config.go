// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/taskdeck/taskdeck/internal/app/system/auth"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for TaskDeck.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: TASKDECK_MONGO_URI, TASKDECK_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "taskdeck", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Token configuration
	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "HMAC secret for signing tokens (must be strong in production)"},
	{Name: "access_token_ttl", Default: "15m", Desc: "Access token lifetime (e.g., 15m, 1h)"},
	{Name: "refresh_token_ttl", Default: "168h", Desc: "Refresh token lifetime (e.g., 168h for 7 days)"},

	// Login throttling
	{Name: "login_rate_per_minute", Default: 10, Desc: "Max login attempts per minute per client (0 disables)"},

	// Audit logging
	{Name: "audit_log", Default: "all", Desc: "Audit event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TASKDECK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret:       appValues.String("jwt_secret"),
		AccessTokenTTL:  appValues.Duration("access_token_ttl", auth.DefaultAccessTTL),
		RefreshTokenTTL: appValues.Duration("refresh_token_ttl", auth.DefaultRefreshTTL),

		LoginRatePerMinute: appValues.Int("login_rate_per_minute"),

		AuditLog: appValues.String("audit_log"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// TaskDeck validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and refuses to start in
// production with the development signing secret.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg.Env == "prod" && appCfg.JWTSecret == "dev-only-change-me-please-0123456789ABCDEF" {
		return fmt.Errorf("jwt_secret must be set to a strong value in production")
	}
	if appCfg.AccessTokenTTL <= 0 || appCfg.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if appCfg.RefreshTokenTTL <= appCfg.AccessTokenTTL {
		return fmt.Errorf("refresh_token_ttl must exceed access_token_ttl")
	}

	switch appCfg.AuditLog {
	case "all", "db", "log", "off":
	default:
		return fmt.Errorf("audit_log must be one of 'all', 'db', 'log', 'off' (got %q)", appCfg.AuditLog)
	}

	return nil
}
