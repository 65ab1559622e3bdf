package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config gathers every runtime setting of the server.
type Config struct {
	Bind     string
	Port     int
	TLSCert  string
	TLSKey   string
	Prod     bool
	Verbose  bool
	Origins  []string
	Shutdown time.Duration

	RedisURL string
	RedisDB  int

	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDatabase string
	MigratePostgres  bool

	KafkaBrokers []string
	KafkaTopic   string

	SessionKey   string
	PublicURL    string
	MessageRate  float64
	MessageBurst int
}

func (c *Config) Validate() error {
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.RedisURL == "" {
		return errors.New("--redis-url is required")
	}
	if c.PostgresEnabled() && (c.PostgresUser == "" || c.PostgresDatabase == "") {
		return errors.New("--postgres-user and --postgres-database are required with --postgres-host")
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("invalid postgres port: %d", c.PostgresPort)
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("--kafka-topic is required with --kafka-brokers")
	}
	if c.MessageRate <= 0 || c.MessageBurst < 1 {
		return fmt.Errorf("invalid message rate %v/s with burst %d", c.MessageRate, c.MessageBurst)
	}
	if c.Prod && c.SessionKey == "" {
		return errors.New("--session-key is required in production")
	}
	return nil
}

// PostgresEnabled reports whether the social store has a database to use.
func (c *Config) PostgresEnabled() bool {
	return c.PostgresHost != ""
}

func (c *Config) Scheme() string {
	if c.TLSCert != "" && c.TLSKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// BaseURL is the address clients reach the server at, used in join links.
func (c *Config) BaseURL() string {
	if c.PublicURL != "" {
		return strings.TrimRight(c.PublicURL, "/")
	}
	host := c.Bind
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("%s://%s:%d", c.Scheme(), host, c.Port)
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDatabase)
}
