package redis

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const highScoreKey = "high_score"

// HighScoreStore persists the process-wide high score as a base-10 string
// under a single Redis key. An absent key means no score yet.
type HighScoreStore struct {
	client *redis.Client
}

func NewHighScoreStore(client *redis.Client) *HighScoreStore {
	return &HighScoreStore{client: client}
}

func (s *HighScoreStore) Load(ctx context.Context) (int, error) {
	raw, err := s.client.Get(ctx, highScoreKey).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	score, err := strconv.Atoi(raw)
	if err != nil {
		// A corrupt value is treated as no score rather than an error.
		return 0, nil
	}
	return score, nil
}

func (s *HighScoreStore) Save(ctx context.Context, score int) error {
	return s.client.Set(ctx, highScoreKey, strconv.Itoa(score), 0).Err()
}
