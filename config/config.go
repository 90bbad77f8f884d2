package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig holds environment driven configuration values.
// Sensitive data must be provided via env files or the environment and
// never defaulted in code.
type AppConfig struct {
	AppPort   string
	JWTSecret string

	// Database
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Redis for caching and token revocation
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	CacheTTL      int // seconds

	// HTTP surface
	RateLimitPerMinute int
	AllowedOrigins     []string
	GinMode            string
	GinPath            string

	// Logging
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load reads configuration once during boot. Precedence: environment
// variables over config.yaml over defaults. A .env file, if present,
// is merged into the environment first.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("invalid config file: %v", err)
		}
	}

	cfg = AppConfig{
		AppPort:   v.GetString("app_port"),
		JWTSecret: v.GetString("jwt_secret"),

		DatabaseURI: v.GetString("database_uri"),
		DBHost:      v.GetString("db_host"),
		DBPort:      v.GetString("db_port"),
		DBUser:      v.GetString("db_user"),
		DBPassword:  v.GetString("db_password"),
		DBName:      v.GetString("db_name"),
		DBSSLMode:   v.GetString("db_sslmode"),

		RedisHost:     v.GetString("redis_host"),
		RedisPort:     v.GetInt("redis_port"),
		RedisDB:       v.GetInt("redis_db"),
		RedisPassword: v.GetString("redis_password"),
		CacheTTL:      v.GetInt("cache_ttl"),

		RateLimitPerMinute: v.GetInt("rate_limit_per_minute"),
		AllowedOrigins:     splitList(v.GetString("cors_allowed_origins")),
		GinMode:            v.GetString("gin_mode"),
		GinPath:            v.GetString("gin_path"),

		LogLevel:      v.GetString("log_level"),
		LogPath:       v.GetString("log_path"),
		LogMaxSizeMB:  v.GetInt("log_max_size_mb"),
		LogMaxBackups: v.GetInt("log_max_backups"),
		LogMaxAgeDays: v.GetInt("log_max_age_days"),
		LogCompress:   v.GetBool("log_compress"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_port", "8080")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("gin_path", "logs/go_gin.log")

	v.SetDefault("db_host", "127.0.0.1")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_name", "forum")
	v.SetDefault("db_sslmode", "disable")

	v.SetDefault("redis_host", "127.0.0.1")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("cache_ttl", 300)

	v.SetDefault("rate_limit_per_minute", 60)
	v.SetDefault("cors_allowed_origins", "*")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_max_size_mb", 100)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age_days", 7)
}

func splitList(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
