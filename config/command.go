package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const ReleaseVersion = "1.0.0"

// NewCommand builds the root command. Every flag can also be set through a
// WORDSPY_ prefixed environment variable.
func NewCommand(cfg *Config, serve func(ctx context.Context, cfg *Config) error) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("WORDSPY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "wordspy",
		Short:   "Realtime backend for the Spy and Skribble party games.",
		Args:    cobra.ExactArgs(0),
		Version: ReleaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: WORDSPY_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: WORDSPY_PORT)")
	fs.StringVar(&cfg.TLSCert, "tls-cert", "", "path to tls certificate (env: WORDSPY_TLS_CERT)")
	fs.StringVar(&cfg.TLSKey, "tls-key", "", "path to tls keyfile (env: WORDSPY_TLS_KEY)")
	fs.BoolVar(&cfg.Prod, "prod", false, "run gin in release mode (env: WORDSPY_PROD)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "display debug output (env: WORDSPY_VERBOSE)")
	fs.StringSliceVar(&cfg.Origins, "origins", []string{"*"}, "allowed CORS origins (env: WORDSPY_ORIGINS)")
	fs.DurationVar(&cfg.Shutdown, "shutdown-timeout", 10*time.Second, "time allowed for in-flight requests on shutdown (env: WORDSPY_SHUTDOWN_TIMEOUT)")

	fs.StringVar(&cfg.RedisURL, "redis-url", "localhost:6379", "redis address or redis:// url (env: WORDSPY_REDIS_URL)")
	fs.IntVar(&cfg.RedisDB, "redis-db", 0, "redis database number (env: WORDSPY_REDIS_DB)")

	fs.StringVar(&cfg.PostgresUser, "postgres-user", "", "postgres user (env: WORDSPY_POSTGRES_USER)")
	fs.StringVar(&cfg.PostgresPassword, "postgres-password", "", "postgres password (env: WORDSPY_POSTGRES_PASSWORD)")
	fs.StringVar(&cfg.PostgresHost, "postgres-host", "", "postgres host, social features are off when empty (env: WORDSPY_POSTGRES_HOST)")
	fs.IntVar(&cfg.PostgresPort, "postgres-port", 5432, "postgres port (env: WORDSPY_POSTGRES_PORT)")
	fs.StringVar(&cfg.PostgresDatabase, "postgres-database", "", "postgres database (env: WORDSPY_POSTGRES_DATABASE)")
	fs.BoolVar(&cfg.MigratePostgres, "migrate-postgres", false, "run schema migrations on start (env: WORDSPY_MIGRATE_POSTGRES)")

	fs.StringSliceVar(&cfg.KafkaBrokers, "kafka-brokers", nil, "kafka brokers for room lifecycle events (env: WORDSPY_KAFKA_BROKERS)")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", "wordspy.rooms", "kafka topic for room lifecycle events (env: WORDSPY_KAFKA_TOPIC)")

	fs.StringVar(&cfg.SessionKey, "session-key", "", "cookie session signing key (env: WORDSPY_SESSION_KEY)")
	fs.StringVar(&cfg.PublicURL, "public-url", "", "external base url used in join links (env: WORDSPY_PUBLIC_URL)")
	fs.Float64Var(&cfg.MessageRate, "message-rate", 20, "inbound messages per second allowed per connection (env: WORDSPY_MESSAGE_RATE)")
	fs.IntVar(&cfg.MessageBurst, "message-burst", 40, "inbound message burst allowed per connection (env: WORDSPY_MESSAGE_BURST)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, envValue(v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("wordspy v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

// envValue flattens a viper value into flag syntax. Slices come back from the
// environment as a single string, already comma separated.
func envValue(value any) string {
	if list, ok := value.([]string); ok {
		return strings.Join(list, ",")
	}
	return fmt.Sprintf("%v", value)
}
