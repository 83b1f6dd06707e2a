// Package player implements the client-side playback reconciler: it
// applies remote sync events to a local player and watches the player
// for drift that should be reported back as a seek intent.
package player

import (
	"sync"
	"time"
)

// Player is the local playback surface being reconciled. Implementations
// wrap whatever embedded player the client runs.
type Player interface {
	Play()
	Pause()
	SeekTo(position float64)
	CurrentTime() float64
	IsPlaying() bool
}

// IntentSender delivers locally originated sync intents upstream.
type IntentSender interface {
	SendSeek(position float64)
}

// Suppressor holds a deadline during which locally observed player
// events must not be re-emitted, because they were caused by applying
// a remote event rather than by the user.
type Suppressor struct {
	mu    sync.Mutex
	now   func() time.Time
	until time.Time
}

func NewSuppressor() *Suppressor {
	return &Suppressor{now: time.Now}
}

// Suppress extends the suppression deadline. A later deadline already
// in place is kept.
func (s *Suppressor) Suppress(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := s.now().Add(d)
	if deadline.After(s.until) {
		s.until = deadline
	}
}

// Active reports whether suppression is currently in effect.
func (s *Suppressor) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Before(s.until)
}
