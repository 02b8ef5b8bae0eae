package generator

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"ratio-quiz-service/internal/domain"
)

// Loader fetches the question bank for a mode/difficulty from a backing
// store. ModeMixed means questions of any mode qualify.
type Loader interface {
	LoadQuestions(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty) ([]domain.Question, error)
}

// Bank is an offline question source drawing random questions from a loader.
// Loaded sets are cached with a TTL to avoid repeated store hits; concurrent
// cache misses for the same key are collapsed via singleflight.
type Bank struct {
	loader Loader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedSet
}

type cachedSet struct {
	questions []domain.Question
	expiresAt time.Time
}

// NewBank creates a bank source over the loader.
func NewBank(loader Loader, ttl time.Duration) *Bank {
	return &Bank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSet),
	}
}

// Generate picks up to count random questions for the mode/difficulty.
// Like the Gemini source, it never fails: an empty or unloadable bank
// yields the fallback question.
func (b *Bank) Generate(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty, count int) ([]domain.Question, error) {
	if count <= 0 {
		count = 1
	}

	set, err := b.load(ctx, mode, difficulty)
	if err != nil || len(set) == 0 {
		log.Printf("question bank unavailable, using fallback: %v", err)
		return []domain.Question{Fallback(mode)}, nil
	}

	b.mu.Lock()
	perm := b.rnd.Perm(len(set))
	b.mu.Unlock()

	if count > len(set) {
		count = len(set)
	}
	batch := make([]domain.Question, 0, count)
	for _, idx := range perm[:count] {
		batch = append(batch, set[idx])
	}
	return batch, nil
}

func (b *Bank) load(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty) ([]domain.Question, error) {
	key := string(mode) + ":" + string(difficulty)
	now := b.clock()

	b.mu.RLock()
	if entry, ok := b.cache[key]; ok && entry.expiresAt.After(now) {
		b.mu.RUnlock()
		return entry.questions, nil
	}
	b.mu.RUnlock()

	result, err, _ := b.sf.Do(key, func() (interface{}, error) {
		now := b.clock()
		// Re-check in case another goroutine filled the cache.
		b.mu.RLock()
		if entry, ok := b.cache[key]; ok && entry.expiresAt.After(now) {
			b.mu.RUnlock()
			return entry.questions, nil
		}
		b.mu.RUnlock()

		loaded, err := b.loader.LoadQuestions(ctx, mode, difficulty)
		if err != nil {
			return nil, err
		}
		questions := normalizeBankQuestions(loaded)
		if len(questions) == 0 {
			// Do not cache an empty set; the store may be seeded later.
			return nil, domain.ErrNoQuestions
		}

		b.mu.Lock()
		b.cache[key] = cachedSet{
			questions: questions,
			expiresAt: now.Add(b.ttlWithJitter()),
		}
		b.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// normalizeBankQuestions holds bank rows to the same contract the model path
// enforces: options deduplicated, the correct answer present, at least two
// distinct options. Rows that cannot be repaired are skipped.
func normalizeBankQuestions(loaded []domain.Question) []domain.Question {
	questions := make([]domain.Question, 0, len(loaded))
	for _, q := range loaded {
		if q.Text == "" || q.CorrectAnswer == "" {
			log.Printf("skipping bank question %s: missing text or answer", q.ID)
			continue
		}
		opts := make([]string, 0, len(q.Options)+1)
		opts = append(opts, q.Options...)
		opts = append(opts, q.CorrectAnswer)
		q.Options = dedupe(opts)
		if len(q.Options) < 2 {
			log.Printf("skipping bank question %s: fewer than two distinct options", q.ID)
			continue
		}
		questions = append(questions, q)
	}
	return questions
}

func (b *Bank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations; caller holds b.mu for rnd
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
