package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	redisClient "github.com/go-redis/redis/v8"
)

// IncrementKeyUsage counts how often a song was shown in a key
func (redis *DBManager) IncrementKeyUsage(ctx context.Context, songID string, key string) error {
	err := redis.client.HIncrBy(ctx, keyUsageKey+":"+songID, key, 1).Err()
	if err != nil {
		return fmt.Errorf("failed to increment key usage for song %s and key %s: %v", songID, key, err)
	}
	return nil
}

// GetKeyUsage retrieves the per-key counts for a song
func (redis *DBManager) GetKeyUsage(ctx context.Context, songID string) (map[string]int, error) {
	return redis.counts(ctx, keyUsageKey+":"+songID)
}

// IncrementSongOpens counts how often a chat opened a song
func (redis *DBManager) IncrementSongOpens(ctx context.Context, username string, songID string) error {
	err := redis.client.HIncrBy(ctx, songOpensKey+":"+username, songID, 1).Err()
	if err != nil {
		return fmt.Errorf("failed to increment song count for user %s and song ID %s: %v", username, songID, err)
	}
	return nil
}

// GetSongOpens retrieves the song counts for a user
func (redis *DBManager) GetSongOpens(ctx context.Context, username string) (map[string]int, error) {
	return redis.counts(ctx, songOpensKey+":"+username)
}

func (redis *DBManager) counts(ctx context.Context, hash string) (map[string]int, error) {
	result := make(map[string]int)
	raw, err := redis.client.HGetAll(ctx, hash).Result()
	if err != nil {
		if errors.Is(err, redisClient.Nil) {
			return result, nil
		}
		return nil, err
	}
	for field, count := range raw {
		countInt, err := strconv.Atoi(count)
		if err != nil {
			continue // skip invalid counts
		}
		result[field] = countInt
	}
	return result, nil
}
