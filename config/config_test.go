package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Bind:         "0.0.0.0",
		Port:         8080,
		RedisURL:     "localhost:6379",
		PostgresPort: 5432,
		MessageRate:  20,
		MessageBurst: 40,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cases := map[string]func(c *Config){
		"half tls":        func(c *Config) { c.TLSCert = "cert.pem" },
		"bad port":        func(c *Config) { c.Port = 70000 },
		"no redis":        func(c *Config) { c.RedisURL = "" },
		"postgres no db":  func(c *Config) { c.PostgresHost = "db" },
		"kafka no topic":  func(c *Config) { c.KafkaBrokers = []string{"k:9092"} },
		"zero rate":       func(c *Config) { c.MessageRate = 0 },
		"prod no session": func(c *Config) { c.Prod = true },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestURLs(t *testing.T) {
	c := validConfig()
	assert.Equal(t, "0.0.0.0:8080", c.Addr())
	assert.Equal(t, "http://localhost:8080", c.BaseURL())

	c.TLSCert, c.TLSKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", c.Scheme())

	c.PublicURL = "https://wordspy.example/"
	assert.Equal(t, "https://wordspy.example", c.BaseURL())

	c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresDatabase = "u", "p", "db", "wordspy"
	assert.Equal(t, "postgresql://u:p@db:5432/wordspy", c.PostgresDSN())
}

func TestCommandDefaultsAndEnv(t *testing.T) {
	t.Setenv("WORDSPY_PORT", "9090")
	t.Setenv("WORDSPY_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := &Config{}
	var served *Config
	cmd := NewCommand(cfg, func(_ context.Context, c *Config) error {
		served = c
		return nil
	})
	cmd.SetArgs([]string{"--verbose", "--shutdown-timeout", "3s"})
	require.NoError(t, cmd.Execute())

	require.NotNil(t, served)
	assert.Equal(t, 9090, served.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, served.KafkaBrokers)
	assert.True(t, served.Verbose)
	assert.Equal(t, 3*time.Second, served.Shutdown)
	assert.Equal(t, "localhost:6379", served.RedisURL)
	assert.Equal(t, []string{"*"}, served.Origins)
}

func TestCommandRejectsInvalidConfig(t *testing.T) {
	cmd := NewCommand(&Config{}, func(context.Context, *Config) error {
		t.Fatal("serve must not run")
		return nil
	})
	cmd.SetArgs([]string{"--port", "0"})
	assert.Error(t, cmd.Execute())
}
