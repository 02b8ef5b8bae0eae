package app

import (
	"context"
	"log"
	"sync"
	"time"

	"ratio-quiz-service/internal/domain"
)

const (
	// batchSize is the number of questions requested per fetch.
	batchSize = 3
	// lookahead is the prefetch threshold: fetch more once the number of
	// unconsumed questions drops to this value, so a network-bound batch
	// has time to land before the buffer runs dry.
	lookahead = 2

	fetchTimeout = 90 * time.Second
	saveTimeout  = 5 * time.Second
)

// Source produces batches of validated questions. Implementations are
// expected to fall back to canned content instead of failing, so an error
// here is the degenerate case and only stops the queue from growing.
type Source interface {
	Generate(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty, count int) ([]domain.Question, error)
}

// HighScoreStore persists the process-wide high score.
type HighScoreStore interface {
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, score int) error
}

// Feedback receives fire-and-forget game cues. Implementations must not fail.
type Feedback interface {
	Correct()
	Incorrect()
	Click()
	SetMuted(muted bool)
}

// Game is the session state machine and question-queue manager. It owns an
// ordered buffer of unconsumed questions, a read cursor, and the session
// stats, and tops the buffer up with asynchronous batch fetches.
type Game struct {
	source Source
	store  HighScoreStore
	sounds Feedback

	mu         sync.RWMutex
	state      domain.GameState
	mode       domain.Mode
	difficulty domain.Difficulty
	stats      domain.SessionStats
	highScore  int

	queue    []domain.Question
	cursor   int
	answered bool
	fetching bool
	// epoch identifies the session the queue belongs to. Start and Exit bump
	// it, so a fetch completing for an abandoned session is detected and dropped.
	epoch uint64

	subscribers map[chan domain.GameUpdate]struct{}
}

// NewGame builds a game in the menu state. The persisted high score is
// loaded once here; a load failure means starting from zero.
func NewGame(ctx context.Context, source Source, store HighScoreStore, sounds Feedback) *Game {
	g := &Game{
		source:      source,
		store:       store,
		sounds:      sounds,
		state:       domain.StateMenu,
		subscribers: make(map[chan domain.GameUpdate]struct{}),
	}
	if store != nil {
		hs, err := store.Load(ctx)
		if err != nil {
			log.Printf("load high score: %v", err)
		} else {
			g.highScore = hs
		}
	}
	return g
}

// Start transitions Menu -> Playing: session stats and queue are reset, the
// chosen mode/difficulty recorded, and an initial fetch kicked off in the
// background. The state is Playing immediately; Current reports not-ready
// until the first batch lands.
func (g *Game) Start(mode domain.Mode, difficulty domain.Difficulty) error {
	if !mode.Valid() {
		return domain.ErrInvalidMode
	}
	if !difficulty.Valid() {
		return domain.ErrInvalidDifficulty
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == domain.StatePlaying {
		return domain.ErrAlreadyPlaying
	}

	g.sounds.Click()
	g.state = domain.StatePlaying
	g.mode = mode
	g.difficulty = difficulty
	g.stats = domain.SessionStats{}
	g.queue = nil
	g.cursor = 0
	g.answered = false
	g.epoch++
	g.fetching = false

	g.requestMoreLocked()
	g.broadcastLocked()
	return nil
}

// Current returns the question at the cursor, or ok=false when the buffer is
// exhausted or not yet populated (the "loading" condition).
func (g *Game) Current() (domain.Question, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.state != domain.StatePlaying || g.cursor >= len(g.queue) {
		return domain.Question{}, false
	}
	return g.queue[g.cursor], true
}

// SubmitAnswer scores the selected option against the current question.
// The cursor does not advance, so the question stays current for its
// explanation. A second submission for the same question is rejected.
func (g *Game) SubmitAnswer(option string) (domain.AnswerResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != domain.StatePlaying {
		return domain.AnswerResult{}, domain.ErrNotPlaying
	}
	if g.cursor >= len(g.queue) {
		return domain.AnswerResult{}, domain.ErrNoCurrentQuestion
	}
	if g.answered {
		return domain.AnswerResult{}, domain.ErrAlreadyAnswered
	}

	question := g.queue[g.cursor]
	correct := option == question.CorrectAnswer
	points := applyAnswer(&g.stats, correct)
	g.answered = true

	if correct {
		g.sounds.Correct()
	} else {
		g.sounds.Incorrect()
	}

	if g.stats.Score > g.highScore {
		g.highScore = g.stats.Score
		g.persistHighScoreLocked()
	}

	g.broadcastLocked()
	return domain.AnswerResult{
		Correct:     correct,
		Explanation: question.Explanation,
		Points:      points,
		Stats:       g.stats,
		HighScore:   g.highScore,
	}, nil
}

// Next advances the cursor and evaluates the prefetch trigger. Advancing an
// already-exhausted buffer leaves the cursor alone but still re-evaluates
// the trigger, which is the only retry path after a failed fetch.
func (g *Game) Next() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != domain.StatePlaying {
		return domain.ErrNotPlaying
	}

	g.sounds.Click()
	if g.cursor < len(g.queue) {
		g.cursor++
	}
	g.answered = false

	if len(g.queue)-g.cursor <= lookahead {
		g.requestMoreLocked()
	}
	g.broadcastLocked()
	return nil
}

// Exit transitions Playing -> Menu, discarding unconsumed questions. The
// high score was already written through incrementally, so nothing else is
// carried over.
func (g *Game) Exit() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != domain.StatePlaying {
		return domain.ErrNotPlaying
	}

	g.sounds.Click()
	g.state = domain.StateMenu
	g.queue = nil
	g.cursor = 0
	g.answered = false
	g.epoch++
	g.fetching = false

	g.broadcastLocked()
	return nil
}

// Stats returns the current session stats.
func (g *Game) Stats() domain.SessionStats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.stats
}

// HighScore returns the process-wide high score.
func (g *Game) HighScore() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.highScore
}

// SetMuted toggles feedback cues.
func (g *Game) SetMuted(muted bool) {
	g.sounds.SetMuted(muted)
}

// Snapshot returns the current game state as pushed to subscribers.
func (g *Game) Snapshot() domain.GameUpdate {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshotLocked()
}

// Subscribe returns a channel receiving game updates. The caller must invoke
// the returned cancel function to avoid leaks.
func (g *Game) Subscribe() (<-chan domain.GameUpdate, func()) {
	ch := make(chan domain.GameUpdate, 8)

	g.mu.Lock()
	g.subscribers[ch] = struct{}{}
	initial := g.snapshotLocked()
	g.mu.Unlock()

	ch <- initial

	cancel := func() {
		g.mu.Lock()
		if _, ok := g.subscribers[ch]; ok {
			delete(g.subscribers, ch)
			close(ch)
		}
		g.mu.Unlock()
	}
	return ch, cancel
}

// requestMoreLocked starts an asynchronous batch fetch unless one is already
// pending. Results are appended in request order; with at most one fetch in
// flight there is no reordering hazard.
func (g *Game) requestMoreLocked() {
	if g.fetching {
		return
	}
	g.fetching = true

	epoch := g.epoch
	mode := g.mode
	difficulty := g.difficulty

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		batch, err := g.source.Generate(ctx, mode, difficulty, batchSize)

		g.mu.Lock()
		defer g.mu.Unlock()
		if g.epoch != epoch {
			// Stale completion for an abandoned session. The pending flag now
			// belongs to the successor session, so leave it alone.
			return
		}
		g.fetching = false
		if err != nil {
			// The queue simply does not grow; the next advance retries.
			log.Printf("fetch question batch: %v", err)
			return
		}
		g.queue = append(g.queue, batch...)
		g.broadcastLocked()
	}()
}

// persistHighScoreLocked writes the high score through to the store.
// Best effort: on failure the persisted value lags the in-memory one.
func (g *Game) persistHighScoreLocked() {
	if g.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := g.store.Save(ctx, g.highScore); err != nil {
		log.Printf("persist high score: %v", err)
	}
}

func (g *Game) broadcastLocked() {
	update := g.snapshotLocked()
	for ch := range g.subscribers {
		select {
		case ch <- update:
		default:
			// Drop the oldest update so a slow consumer never blocks the game.
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
}

func (g *Game) snapshotLocked() domain.GameUpdate {
	update := domain.GameUpdate{
		State:     g.state,
		Stats:     g.stats,
		HighScore: g.highScore,
	}
	if g.state == domain.StatePlaying && g.cursor < len(g.queue) {
		question := g.queue[g.cursor]
		update.Ready = true
		update.Question = &question
	}
	return update
}
