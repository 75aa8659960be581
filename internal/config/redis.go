package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when url is empty; the change feed is optional.
func ConnectRedis(url string) (*redis.Client, error) {
	if url == "" {
		log.Println("[CONFIG] REDIS_URL kosong, dispatch feed nonaktif (polling saja)")
		return nil, nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Println("[CONFIG] terhubung ke Redis")
	return client, nil
}
