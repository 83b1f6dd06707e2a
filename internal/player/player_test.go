package player

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakePlayer struct {
	position float64
	playing  bool
	seeks    []float64
}

func (p *fakePlayer) Play()  { p.playing = true }
func (p *fakePlayer) Pause() { p.playing = false }
func (p *fakePlayer) SeekTo(position float64) {
	p.position = position
	p.seeks = append(p.seeks, position)
}
func (p *fakePlayer) CurrentTime() float64 { return p.position }
func (p *fakePlayer) IsPlaying() bool      { return p.playing }

type fakeSender struct {
	seeks []float64
}

func (s *fakeSender) SendSeek(position float64) { s.seeks = append(s.seeks, position) }

func newTestDetector(p *fakePlayer, s *fakeSender, suppressor *Suppressor) *DriftDetector {
	return NewDriftDetector(p, s, suppressor, DriftOptions{}, zap.NewNop())
}

func TestDriftDetector_NormalPlaybackNoSeek(t *testing.T) {
	p := &fakePlayer{position: 10, playing: true}
	sender := &fakeSender{}
	d := newTestDetector(p, sender, NewSuppressor())
	d.lastKnown = 10

	// Advancing roughly one interval per tick is normal playback.
	for _, pos := range []float64{11.0, 12.1, 12.9, 14.0} {
		p.position = pos
		d.tick()
	}

	if len(sender.seeks) != 0 {
		t.Errorf("Expected no seek intents, got %v", sender.seeks)
	}
}

func TestDriftDetector_ThresholdIsStrict(t *testing.T) {
	sender := &fakeSender{}
	p := &fakePlayer{playing: true}
	d := newTestDetector(p, sender, NewSuppressor())

	// Expected position is 11; a jump to exactly 14 is drift of
	// exactly 3 and stays below the reporting bar.
	d.lastKnown = 10
	p.position = 14
	d.tick()
	if len(sender.seeks) != 0 {
		t.Errorf("Drift of exactly the threshold must not report, got %v", sender.seeks)
	}

	// From 14 the next expected is 15; 20 is drift 5.
	p.position = 20
	d.tick()
	if len(sender.seeks) != 1 || sender.seeks[0] != 20 {
		t.Errorf("Expected one seek intent at 20, got %v", sender.seeks)
	}
}

func TestDriftDetector_JumpReportedOnce(t *testing.T) {
	sender := &fakeSender{}
	p := &fakePlayer{playing: true}
	d := newTestDetector(p, sender, NewSuppressor())
	d.lastKnown = 10

	p.position = 60
	d.tick()
	// Next tick continues from the new position.
	p.position = 61
	d.tick()

	if len(sender.seeks) != 1 {
		t.Errorf("Expected the jump reported exactly once, got %v", sender.seeks)
	}
}

func TestDriftDetector_ScrubWhilePaused(t *testing.T) {
	sender := &fakeSender{}
	p := &fakePlayer{playing: false}
	d := newTestDetector(p, sender, NewSuppressor())
	d.lastKnown = 30

	// Paused players do not advance, so expected stays at 30.
	p.position = 30
	d.tick()
	if len(sender.seeks) != 0 {
		t.Errorf("Expected no intent for a stationary paused player, got %v", sender.seeks)
	}

	p.position = 90
	d.tick()
	if len(sender.seeks) != 1 || sender.seeks[0] != 90 {
		t.Errorf("Expected a seek intent for a paused scrub, got %v", sender.seeks)
	}
}

func TestDriftDetector_BackwardJump(t *testing.T) {
	sender := &fakeSender{}
	p := &fakePlayer{playing: true}
	d := newTestDetector(p, sender, NewSuppressor())
	d.lastKnown = 50

	p.position = 20
	d.tick()

	if len(sender.seeks) != 1 || sender.seeks[0] != 20 {
		t.Errorf("Expected a backward scrub reported, got %v", sender.seeks)
	}
}

func TestDriftDetector_SuppressedAfterRemoteEvent(t *testing.T) {
	sender := &fakeSender{}
	p := &fakePlayer{playing: true}
	suppressor := NewSuppressor()
	d := newTestDetector(p, sender, suppressor)
	d.lastKnown = 10

	suppressor.Suppress(time.Minute)
	p.position = 60
	d.tick()

	if len(sender.seeks) != 0 {
		t.Errorf("Expected the jump swallowed while suppressed, got %v", sender.seeks)
	}

	// The jump still updated the baseline, so nothing fires later either.
	p.position = 61
	d.tick()
	if len(sender.seeks) != 0 {
		t.Errorf("Expected no delayed report, got %v", sender.seeks)
	}
}

func TestSuppressor_DeadlineExpires(t *testing.T) {
	s := NewSuppressor()
	now := time.Now()
	s.now = func() time.Time { return now }

	s.Suppress(time.Second)
	if !s.Active() {
		t.Error("Expected suppression active immediately after arming")
	}

	now = now.Add(999 * time.Millisecond)
	if !s.Active() {
		t.Error("Expected suppression active just before the deadline")
	}

	now = now.Add(2 * time.Millisecond)
	if s.Active() {
		t.Error("Expected suppression expired after the deadline")
	}
}

func TestSuppressor_KeepsLaterDeadline(t *testing.T) {
	s := NewSuppressor()
	now := time.Now()
	s.now = func() time.Time { return now }

	s.Suppress(time.Second)
	s.Suppress(100 * time.Millisecond)

	now = now.Add(500 * time.Millisecond)
	if !s.Active() {
		t.Error("Expected the longer deadline kept when re-armed with a shorter one")
	}
}

func TestApplier_PlayPauseSeek(t *testing.T) {
	p := &fakePlayer{position: 5}
	s := NewSuppressor()
	now := time.Now()
	s.now = func() time.Time { return now }
	a := NewApplier(p, s, ApplierOptions{}, zap.NewNop())

	a.ApplyPlay(42)
	if !p.playing || p.position != 42 {
		t.Errorf("Expected playing at 42, got playing=%v position=%f", p.playing, p.position)
	}
	if !s.Active() {
		t.Error("Expected suppression armed after remote play")
	}

	// The play/pause window is shorter than the seek window.
	now = now.Add(600 * time.Millisecond)
	if s.Active() {
		t.Error("Expected play suppression expired after 600ms")
	}

	a.ApplyPause(43)
	if p.playing || p.position != 43 {
		t.Errorf("Expected paused at 43, got playing=%v position=%f", p.playing, p.position)
	}

	now = now.Add(600 * time.Millisecond)
	a.ApplySeek(100)
	if p.position != 100 {
		t.Errorf("Expected position 100, got %f", p.position)
	}
	now = now.Add(600 * time.Millisecond)
	if !s.Active() {
		t.Error("Expected seek suppression still active at 600ms")
	}
	now = now.Add(500 * time.Millisecond)
	if s.Active() {
		t.Error("Expected seek suppression expired after 1.1s")
	}
}
