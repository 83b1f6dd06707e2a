package player

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultPollInterval   = time.Second
	defaultDriftThreshold = 3.0
)

// DriftDetector polls the local player and compares the observed
// position against the position extrapolated from the previous poll.
// A user scrubbing the timeline shows up as a jump larger than the
// threshold and is reported as a seek intent. Drift at or below the
// threshold is ignored.
type DriftDetector struct {
	player     Player
	sender     IntentSender
	suppressor *Suppressor
	interval   time.Duration
	threshold  float64
	logger     *zap.Logger

	mu        sync.Mutex
	lastKnown float64
}

// DriftOptions overrides the poll interval and drift threshold. Zero
// values fall back to the defaults.
type DriftOptions struct {
	PollInterval   time.Duration
	DriftThreshold float64
}

func NewDriftDetector(p Player, sender IntentSender, s *Suppressor, opts DriftOptions, logger *zap.Logger) *DriftDetector {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.DriftThreshold <= 0 {
		opts.DriftThreshold = defaultDriftThreshold
	}
	return &DriftDetector{
		player:     p,
		sender:     sender,
		suppressor: s,
		interval:   opts.PollInterval,
		threshold:  opts.DriftThreshold,
		logger:     logger,
	}
}

// Run polls until the context is cancelled.
func (d *DriftDetector) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.mu.Lock()
	d.lastKnown = d.player.CurrentTime()
	d.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick()
		}
	}
}

// tick runs one comparison. The last known position is updated on every
// tick regardless of outcome, so a single jump is reported once.
func (d *DriftDetector) tick() {
	actual := d.player.CurrentTime()

	d.mu.Lock()
	expected := d.lastKnown
	if d.player.IsPlaying() {
		expected += d.interval.Seconds()
	}
	d.lastKnown = actual
	d.mu.Unlock()

	drift := math.Abs(actual - expected)
	if drift <= d.threshold {
		return
	}

	if d.suppressor.Active() {
		d.logger.Debug("Drift suppressed after remote event",
			zap.Float64("drift", drift),
			zap.Float64("position", actual),
		)
		return
	}

	d.logger.Debug("Local seek detected",
		zap.Float64("drift", drift),
		zap.Float64("position", actual),
	)
	d.sender.SendSeek(actual)
}
