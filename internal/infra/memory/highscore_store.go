package memory

import (
	"context"
	"sync"
)

// HighScoreStore is an in-memory implementation of app.HighScoreStore.
// It loses state on restart and exists for tests and store-less deployments.
type HighScoreStore struct {
	mu    sync.RWMutex
	score int
}

func NewHighScoreStore() *HighScoreStore {
	return &HighScoreStore{}
}

func (s *HighScoreStore) Load(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.score, nil
}

func (s *HighScoreStore) Save(_ context.Context, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.score = score
	return nil
}
