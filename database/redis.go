package database

import (
	"context"
	"log"
	"time"

	config "github.com/examsoft/exam_portal/configs"
	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// ConnectRedis is optional; the leaderboard cache degrades to direct
// database queries when Redis is not reachable.
func ConnectRedis() {
	addr := config.Config("REDIS_ADDR")
	if addr == "" {
		log.Println("⚠️ REDIS_ADDR not set, leaderboard caching disabled.")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.Config("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Failed to connect to Redis at %s: %v. Leaderboard caching disabled.", addr, err)
		return
	}

	Redis = client
	log.Println("✅ Redis connected successfully")
}
