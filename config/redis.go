package config

import (
	"Wordspy/services/redis"
	"Wordspy/utils/logger"
)

// Connect to Redis
func Connect_redis(cfg *Config) (*redis.RedisClient, error) {
	logger.Debugf("[REDIS] Connecting to %s", cfg.RedisURL)
	redisClient, err := redis.InitRedis(cfg.RedisURL, cfg.RedisDB)
	if err != nil {
		logger.Criticalf("[REDIS] Error connecting to Redis: %v", err)
		return nil, err
	}
	logger.Infof("[REDIS] Redis connection established")
	return redisClient, nil
}
