package config

import (
	"context"
	"log"
	"os"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

var (
	rdb    *redis.Client
	locker *redislock.Client
)

func GetRedisDB() *redis.Client {
	return rdb
}

// GetRedisLock returns the advisory-lock client, or nil when Redis is not
// configured. Callers must treat the lock as a best-effort optimization:
// correctness never depends on it (the durable guard is the DB transaction).
func GetRedisLock() *redislock.Client {
	return locker
}

// ConnectRedis dials Redis if REDIS_ADDRESS is set. Safe to skip entirely;
// every consumer is nil-checked.
func ConnectRedis() {
	address := os.Getenv("REDIS_ADDRESS")
	if address == "" {
		log.Printf("REDIS_ADDRESS not set; advisory locks disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr: address,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("failed to connect redis at %s: %v; advisory locks disabled", address, err)
		return
	}

	rdb = client
	locker = redislock.New(client)
	log.Printf("connected to redis at %s", address)
}
