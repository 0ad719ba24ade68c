// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultCORSOrigins are the frontends allowed to call the API.
var DefaultCORSOrigins = []string{
	"https://assero-frontend.netlify.app",
	"https://assero.io",
	"https://www.assero.io",
	"http://localhost:3000",
	"http://localhost:5173",
}

var loadedEnvFile string

// EnvFile returns the .env path picked up by the last Load, if any.
func EnvFile() string {
	return loadedEnvFile
}

// Load reads configs/config.yaml (optional), merges config.<APP_ENVIRONMENT>.yaml and applies
// environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return decode(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	registerKeys(v)
	return v
}

// registerKeys makes every key known to viper so AutomaticEnv also applies during Unmarshal.
func registerKeys(v *viper.Viper) {
	for _, key := range []string{
		"app.name", "app.version", "app.environment",
		"server.port", "server.admin_token", "server.read_timeout", "server.write_timeout",
		"server.shutdown_timeout", "server.max_body_bytes",
		"database.connect_retries",
		"redis.address", "redis.password", "redis.db", "redis.cache_ttl",
		"elasticsearch.url", "elasticsearch.username", "elasticsearch.password", "elasticsearch.index",
		"storage.data_dir",
		"mail.provider", "mail.from_name", "mail.from", "mail.admin_email", "mail.timeout",
		"mail.smtp.host", "mail.smtp.port", "mail.smtp.username", "mail.smtp.password", "mail.smtp.use_tls",
		"aws.region", "aws.ses.enabled", "aws.sns.topic_arn",
		"logging.level", "logging.format", "logging.output",
	} {
		v.SetDefault(key, nil)
	}
	for _, role := range []string{"privileged", "restricted"} {
		for _, field := range []string{"url", "host", "port", "database", "user", "password", "max_connections", "max_idle", "sslmode"} {
			v.SetDefault(fmt.Sprintf("database.%s.%s", role, field), nil)
		}
	}
	v.SetDefault("mail.smtp.use_tls", true)
}

func decode(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				loadedEnvFile = path
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values. Unset variables expand to "".
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig honours the flat variable names used by existing deployments.
func overrideEmptyConfig(cfg *Config) {
	setString(&cfg.Database.Privileged.URL, "DATABASE_PRIVILEGED_URL")
	setString(&cfg.Database.Restricted.URL, "DATABASE_RESTRICTED_URL")
	setString(&cfg.Database.Restricted.URL, "DATABASE_URL")

	setString(&cfg.Mail.SMTP.Host, "EMAIL_HOST")
	setString(&cfg.Mail.SMTP.Username, "EMAIL_USER")
	setString(&cfg.Mail.SMTP.Password, "EMAIL_PASS")
	setString(&cfg.Mail.AdminEmail, "ADMIN_EMAIL")
	setString(&cfg.Server.AdminToken, "ADMIN_TOKEN")
	setString(&cfg.Redis.Address, "REDIS_ADDR")
	setString(&cfg.AWS.Region, "AWS_REGION")
	setString(&cfg.AWS.SNS.TopicARN, "SNS_TOPIC_ARN")

	setInt(&cfg.Mail.SMTP.Port, "EMAIL_PORT")
	setInt(&cfg.Server.Port, "PORT")
}

func setString(dst *string, env string) {
	if *dst != "" {
		return
	}
	if val := os.Getenv(env); val != "" {
		*dst = val
	}
}

func setInt(dst *int, env string) {
	if *dst != 0 {
		return
	}
	if val := os.Getenv(env); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "founders-circle"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "1.0.0"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5173
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = append([]string(nil), DefaultCORSOrigins...)
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}

	if cfg.Database.ConnectRetries == 0 {
		cfg.Database.ConnectRetries = 3
	}
	for _, pg := range []*PostgresConfig{&cfg.Database.Privileged, &cfg.Database.Restricted} {
		if pg.Port == 0 {
			pg.Port = 5432
		}
		if pg.MaxConnections == 0 {
			pg.MaxConnections = 10
		}
		if pg.MaxIdle == 0 {
			pg.MaxIdle = 2
		}
		if pg.SSLMode == "" {
			pg.SSLMode = "require"
		}
	}

	if cfg.Redis.CacheTTL == 0 {
		cfg.Redis.CacheTTL = 300000
	}
	if cfg.Elasticsearch.Index == "" {
		cfg.Elasticsearch.Index = "founders-analytics"
	}

	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}

	if cfg.Mail.SMTP.Host == "" {
		cfg.Mail.SMTP.Host = "smtp.gmail.com"
	}
	if cfg.Mail.SMTP.Port == 0 {
		cfg.Mail.SMTP.Port = 587
	}
	if cfg.Mail.FromName == "" {
		cfg.Mail.FromName = "Assero.io"
	}
	if cfg.Mail.Timeout == 0 {
		cfg.Mail.Timeout = 30000
	}
	if cfg.AWS.SES.Enabled && cfg.Mail.Provider == "" {
		cfg.Mail.Provider = "ses"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch cfg.Mail.Provider {
	case "", "smtp":
	case "ses":
		if cfg.AWS.Region == "" {
			return fmt.Errorf("aws.region is required when mail.provider is ses")
		}
		if cfg.Mail.FromAddress() == "" {
			return fmt.Errorf("mail.from is required when mail.provider is ses")
		}
	default:
		return fmt.Errorf("mail.provider must be smtp or ses, got %q", cfg.Mail.Provider)
	}

	if cfg.Mail.SMTP.Port <= 0 || cfg.Mail.SMTP.Port > 65535 {
		return fmt.Errorf("mail.smtp.port must be between 1 and 65535")
	}

	if cfg.AWS.SNS.TopicARN != "" && cfg.AWS.Region == "" {
		return fmt.Errorf("aws.region is required when aws.sns.topic_arn is set")
	}

	return nil
}
