package main

import (
	"Wordspy/config"
	_ "Wordspy/config/swagger"
	"Wordspy/middleware"
	"Wordspy/routes"
	"Wordspy/services/events"
	"Wordspy/services/game/directory"
	"Wordspy/services/gateway"
	"Wordspy/services/redis"
	"Wordspy/services/registry"
	"Wordspy/services/relay"
	"Wordspy/services/social"
	"Wordspy/services/socket_io"
	"Wordspy/utils/logger"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// @title Wordspy API
// @version 1.0
// @description Gin-Gonic server for the Spy and Skribble party games
// @BasePath /
func main() {
	// .env values only fill variables the environment does not set already
	godotenv.Load()

	cfg := &config.Config{}
	cobra.CheckErr(config.NewCommand(cfg, serve).Execute())
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger.Setup(os.Stdout, cfg.Verbose)
	logger.Infof("Setting up server...")

	if cfg.Prod {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := directory.Validate(); err != nil {
		return err
	}

	redisClient, err := config.Connect_redis(cfg)
	if err != nil {
		return err
	}
	defer redis.CloseRedis(redisClient)

	var store social.Store
	if cfg.PostgresEnabled() {
		gormDB, err := config.ConnectGORM(cfg)
		if err != nil {
			return err
		}
		// Only migrate in development or during deployment
		if cfg.MigratePostgres {
			logger.Infof("Migrating PostgreSQL database...")
			if err := config.MigrateDatabase(gormDB); err != nil {
				logger.Warningf("Database migration failed: %v", err)
			}
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		store = social.NewGormStore(gormDB)
	} else {
		logger.Warningf("[SOCIAL] No PostgreSQL host configured, friends and profiles are disabled")
	}

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Infof("[EVENTS] Publishing room events to %s", cfg.KafkaTopic)
	}
	defer publisher.Close()

	reg := registry.New(registry.Options{Store: redisClient})
	rooms := directory.New(directory.Options{Publisher: publisher})
	gw := gateway.New(gateway.Options{
		Registry:     reg,
		Rooms:        rooms,
		Relay:        relay.New(redisClient, reg, nil),
		Social:       store,
		MessageRate:  cfg.MessageRate,
		MessageBurst: cfg.MessageBurst,
	})

	sessionKey := cfg.SessionKey
	if sessionKey == "" {
		logger.Warningf("No session key configured, using a random one")
		sessionKey = uuid.NewString()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	middleware.SetUpMiddleware(r, sessionKey, cfg.Origins, cfg.Scheme() == "https")
	routes.SetupRoutes(r, routes.Dependencies{
		Rooms:      rooms,
		Presence:   reg,
		Social:     store,
		Dispatcher: gw,
		Origins:    cfg.Origins,
		BaseURL:    cfg.BaseURL(),
	})

	sio := socket_io.NewSocketServer(gw)
	sio.Start(r, cfg.Origins, cfg.Verbose)
	defer sio.Close()

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	errC := make(chan error, 1)
	go func() {
		var err error
		if cfg.Scheme() == "https" {
			err = srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
		close(errC)
	}()
	logger.Infof("Server started on %s://%s", cfg.Scheme(), cfg.Addr())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	defer stop()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	logger.Infof("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
