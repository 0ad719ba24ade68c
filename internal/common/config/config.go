// internal/common/config/config.go
package config

import (
	"fmt"
	"net/mail"
	"time"
)

// Config is the root configuration of the service.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Mail          MailConfig          `mapstructure:"mail"`
	AWS           AWSConfig           `mapstructure:"aws"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
	AdminToken      string   `mapstructure:"admin_token"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	MaxBodyBytes    int64    `mapstructure:"max_body_bytes"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type DatabaseConfig struct {
	Privileged     PostgresConfig `mapstructure:"privileged"`
	Restricted     PostgresConfig `mapstructure:"restricted"`
	ConnectRetries int            `mapstructure:"connect_retries"`
}

// PostgresConfig describes one database role. URL wins over the discrete fields.
type PostgresConfig struct {
	URL            string `mapstructure:"url"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// Enabled reports whether enough is set to attempt a connection.
func (p PostgresConfig) Enabled() bool {
	return p.URL != "" || (p.Host != "" && p.User != "")
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	CacheTTL int    `mapstructure:"cache_ttl"` // milliseconds
}

func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
	Index     string   `mapstructure:"index"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

// GetAddresses merges URL into the address list.
func (e ElasticsearchConfig) GetAddresses() []string {
	if len(e.Addresses) > 0 {
		return e.Addresses
	}
	if e.URL != "" {
		return []string{e.URL}
	}
	return nil
}

func (e ElasticsearchConfig) Enabled() bool {
	return e.GetURL() != ""
}

// StorageConfig holds the flat-file fallback settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// MailConfig selects and configures the outbound mail transport.
type MailConfig struct {
	Provider   string     `mapstructure:"provider"` // "smtp", "ses" or empty for auto
	SMTP       SMTPConfig `mapstructure:"smtp"`
	FromName   string     `mapstructure:"from_name"`
	From       string     `mapstructure:"from"`
	AdminEmail string     `mapstructure:"admin_email"`
	Timeout    int        `mapstructure:"timeout"` // milliseconds
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	UseTLS   bool   `mapstructure:"use_tls"`
}

// FromAddress is the envelope sender; it defaults to the SMTP user.
func (m MailConfig) FromAddress() string {
	if m.From != "" {
		return m.From
	}
	return m.SMTP.Username
}

// FromHeader renders the From header, e.g. "Assero.io" <team@assero.io>.
func (m MailConfig) FromHeader() string {
	addr := mail.Address{Name: m.FromName, Address: m.FromAddress()}
	return addr.String()
}

type AWSConfig struct {
	Region string `mapstructure:"region"`
	SES    struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"ses"`
	SNS struct {
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
