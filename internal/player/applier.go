package player

import (
	"time"

	"go.uber.org/zap"
)

const (
	defaultPlayPauseCooldown = 500 * time.Millisecond
	defaultSeekCooldown      = time.Second
)

// Applier applies remote sync events to the local player. Each applied
// event arms the suppressor so the resulting player state change is not
// echoed back as a new intent.
type Applier struct {
	player            Player
	suppressor        *Suppressor
	playPauseCooldown time.Duration
	seekCooldown      time.Duration
	logger            *zap.Logger
}

// ApplierOptions overrides the echo suppression windows. Zero values
// fall back to the defaults.
type ApplierOptions struct {
	PlayPauseCooldown time.Duration
	SeekCooldown      time.Duration
}

func NewApplier(p Player, s *Suppressor, opts ApplierOptions, logger *zap.Logger) *Applier {
	if opts.PlayPauseCooldown <= 0 {
		opts.PlayPauseCooldown = defaultPlayPauseCooldown
	}
	if opts.SeekCooldown <= 0 {
		opts.SeekCooldown = defaultSeekCooldown
	}
	return &Applier{
		player:            p,
		suppressor:        s,
		playPauseCooldown: opts.PlayPauseCooldown,
		seekCooldown:      opts.SeekCooldown,
		logger:            logger,
	}
}

// ApplyPlay seeks to the remote position and resumes playback.
func (a *Applier) ApplyPlay(position float64) {
	a.suppressor.Suppress(a.playPauseCooldown)
	a.player.SeekTo(position)
	a.player.Play()
	a.logger.Debug("Applied remote play", zap.Float64("position", position))
}

// ApplyPause seeks to the remote position and pauses playback.
func (a *Applier) ApplyPause(position float64) {
	a.suppressor.Suppress(a.playPauseCooldown)
	a.player.SeekTo(position)
	a.player.Pause()
	a.logger.Debug("Applied remote pause", zap.Float64("position", position))
}

// ApplySeek jumps to the remote position without changing play state.
// Seeks use the longer suppression window to cover the buffering burst
// that follows a jump.
func (a *Applier) ApplySeek(position float64) {
	a.suppressor.Suppress(a.seekCooldown)
	a.player.SeekTo(position)
	a.logger.Debug("Applied remote seek", zap.Float64("position", position))
}
