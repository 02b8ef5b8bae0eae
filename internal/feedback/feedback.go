package feedback

import (
	"log"
	"os"
	"sync"
)

// Notifier receives fire-and-forget game cues. Implementations swallow any
// internal failure; the game never learns whether a cue was delivered.
type Notifier interface {
	Correct()
	Incorrect()
	Click()
	SetMuted(muted bool)
	Muted() bool
}

// Chime is the default notifier. It holds the process-wide mute flag and a
// lazily constructed log sink, mirroring how an audio device handle would be
// created on first use.
type Chime struct {
	mu    sync.Mutex
	muted bool

	once   sync.Once
	logger *log.Logger
}

func NewChime() *Chime {
	return &Chime{}
}

func (c *Chime) sink() *log.Logger {
	c.once.Do(func() {
		c.logger = log.New(os.Stdout, "chime: ", log.LstdFlags)
	})
	return c.logger
}

func (c *Chime) emit(cue string) {
	c.mu.Lock()
	muted := c.muted
	c.mu.Unlock()
	if muted {
		return
	}
	c.sink().Print(cue)
}

func (c *Chime) Correct() { c.emit("correct") }

func (c *Chime) Incorrect() { c.emit("incorrect") }

func (c *Chime) Click() { c.emit("click") }

func (c *Chime) SetMuted(muted bool) {
	c.mu.Lock()
	c.muted = muted
	c.mu.Unlock()
}

func (c *Chime) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// Nop discards all cues; used in tests.
type Nop struct{}

func (Nop) Correct() {}

func (Nop) Incorrect() {}

func (Nop) Click() {}

func (Nop) SetMuted(bool) {}

func (Nop) Muted() bool { return false }
