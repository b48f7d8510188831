package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

// Config stores all configuration of the application
type Config struct {
	// Environment: development, production
	AppEnv string

	// Server
	ServerPort     string
	AllowedOrigins []string
	AppBaseURL     string // 邮件中链接的前端地址

	// Logging
	LogLevel string
	LogDir   string

	// Database
	DBDriver            string // "mysql" 或 "sqlite"
	DBHost              string
	DBPort              string
	DBUser              string
	DBPassword          string
	DBName              string
	DBSQLitePath        string
	DBMigrationMode     string // 数据库迁移模式: "auto"(AutoMigrate), "versioned"(goose)
	DBMaxOpenConns      int
	DBMaxIdleConns      int
	DBConnMaxLifetime   time.Duration
	DBConnMaxIdleTime   time.Duration
	DBConnectRetries    int
	DBConnectRetryDelay time.Duration

	// JWT Authentication
	JWTSecretKey    string
	JWTIssuer       string
	JWTTTL          time.Duration
	RefreshTokenTTL time.Duration

	// Admin bootstrap, skipped when either is empty
	DefaultAdminEmail    string
	DefaultAdminPassword string

	// Redis
	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string

	// MQTT配置, BrokerURL 为空时不发布事件
	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTQoS         int
	MQTTTopicPrefix string
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "4000")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:4200")
	v.SetDefault("APP_BASE_URL", "http://localhost:4200")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "logs")

	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "user_management")
	v.SetDefault("DB_SQLITE_PATH", "user_management.db")
	v.SetDefault("DB_MIGRATION_MODE", "auto")
	v.SetDefault("DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 10*time.Second)
	v.SetDefault("DB_CONNECT_RETRIES", 5)
	v.SetDefault("DB_CONNECT_RETRY_DELAY", 5*time.Second)

	v.SetDefault("JWT_ISSUER", "user-management")
	v.SetDefault("JWT_TTL", 15*time.Minute)
	v.SetDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", time.Minute)

	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("EMAIL_FROM", "info@user-management.local")

	v.SetDefault("MQTT_CLIENT_ID", "user-management")
	v.SetDefault("MQTT_QOS", 1)
	v.SetDefault("MQTT_TOPIC_PREFIX", "hr")
}

// Load reads the configuration from the environment. Call godotenv.Load first
// to pick up a local .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	defaults(v)

	cfg := &Config{
		AppEnv:         strings.ToLower(v.GetString("APP_ENV")),
		ServerPort:     v.GetString("PORT"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		AppBaseURL:     strings.TrimRight(v.GetString("APP_BASE_URL"), "/"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogDir:         v.GetString("LOG_DIR"),

		DBDriver:            strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:              v.GetString("DB_HOST"),
		DBPort:              v.GetString("DB_PORT"),
		DBUser:              v.GetString("DB_USER"),
		DBPassword:          v.GetString("DB_PASSWORD"),
		DBName:              v.GetString("DB_NAME"),
		DBSQLitePath:        v.GetString("DB_SQLITE_PATH"),
		DBMigrationMode:     strings.ToLower(v.GetString("DB_MIGRATION_MODE")),
		DBMaxOpenConns:      v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:      v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLifetime:   v.GetDuration("DB_CONN_MAX_LIFETIME"),
		DBConnMaxIdleTime:   v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		DBConnectRetries:    v.GetInt("DB_CONNECT_RETRIES"),
		DBConnectRetryDelay: v.GetDuration("DB_CONNECT_RETRY_DELAY"),

		JWTSecretKey:    v.GetString("JWT_SECRET"),
		JWTIssuer:       v.GetString("JWT_ISSUER"),
		JWTTTL:          v.GetDuration("JWT_TTL"),
		RefreshTokenTTL: v.GetDuration("REFRESH_TOKEN_TTL"),

		DefaultAdminEmail:    v.GetString("DEFAULT_ADMIN_EMAIL"),
		DefaultAdminPassword: v.GetString("DEFAULT_ADMIN_PASSWORD"),

		RedisEnabled:  v.GetBool("REDIS_ENABLED"),
		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		CacheTTL:      v.GetDuration("CACHE_TTL"),

		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetInt("SMTP_PORT"),
		SMTPUser:     v.GetString("SMTP_USER"),
		SMTPPassword: v.GetString("SMTP_PASSWORD"),
		EmailFrom:    v.GetString("EMAIL_FROM"),

		MQTTBrokerURL:   v.GetString("MQTT_BROKER_URL"),
		MQTTClientID:    v.GetString("MQTT_CLIENT_ID"),
		MQTTUsername:    v.GetString("MQTT_USERNAME"),
		MQTTPassword:    v.GetString("MQTT_PASSWORD"),
		MQTTQoS:         v.GetInt("MQTT_QOS"),
		MQTTTopicPrefix: v.GetString("MQTT_TOPIC_PREFIX"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no safe default.
func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.DBMigrationMode {
	case "auto", "versioned":
	default:
		return fmt.Errorf("unsupported DB_MIGRATION_MODE %q", c.DBMigrationMode)
	}
	if c.DBConnectRetries < 1 {
		c.DBConnectRetries = 1
	}
	if c.MQTTQoS < 0 || c.MQTTQoS > 2 {
		return fmt.Errorf("MQTT_QOS must be 0, 1 or 2, got %d", c.MQTTQoS)
	}
	return nil
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return c.mysqlConfig(c.DBName).FormatDSN()
}

// GetServerDSN returns a DSN without a schema, used to create the database.
func (c *Config) GetServerDSN() string {
	return c.mysqlConfig("").FormatDSN()
}

func (c *Config) mysqlConfig(dbName string) *mysql.Config {
	mc := mysql.NewConfig()
	mc.User = c.DBUser
	mc.Passwd = c.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.DBHost, c.DBPort)
	mc.DBName = dbName
	mc.ParseTime = true
	mc.AllowNativePasswords = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return net.JoinHostPort(c.RedisHost, c.RedisPort)
}

// SMTPEnabled reports whether outgoing mail should be delivered.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
