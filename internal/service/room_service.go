package service

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rushikeshnarwade/sync-beats/internal/model"
	apperrors "github.com/rushikeshnarwade/sync-beats/internal/pkg/errors"
	"github.com/rushikeshnarwade/sync-beats/internal/pkg/roomcode"
)

// QueueUpdate is the full-queue state pushed to a room after a mutation.
type QueueUpdate struct {
	Queue        []model.QueueItem `json:"queue"`
	CurrentIndex int               `json:"currentIndex"`
	AutoPlay     bool              `json:"autoPlay,omitempty"`
}

// MemberUpdate describes a membership change for fan-out.
type MemberUpdate struct {
	RoomCode    string   `json:"-"`
	DisplayName string   `json:"displayName"`
	Members     []string `json:"members"`
}

// RoomService owns every live room: creation, membership, playback state
// transitions and grace-period expiry. All room state lives in memory and
// dies with the process.
//
// Lock order is always the service mutex before a room mutex. Mutations to
// one room are serialized by its own mutex; rooms never block each other.
type RoomService struct {
	mu     sync.RWMutex
	rooms  map[string]*syncRoom
	byConn map[string]string // connection ID -> room code

	codes  *roomcode.Generator
	grace  time.Duration
	logger *zap.Logger
	now    func() time.Time
}

type syncRoom struct {
	mu   sync.Mutex
	room *model.Room
	// expiry is armed while the room is empty and nil otherwise.
	expiry *time.Timer
}

// NewRoomService creates a room service. grace is how long an empty room
// is kept before deletion.
func NewRoomService(codes *roomcode.Generator, grace time.Duration, logger *zap.Logger) *RoomService {
	return &RoomService{
		rooms:  make(map[string]*syncRoom),
		byConn: make(map[string]string),
		codes:  codes,
		grace:  grace,
		logger: logger,
		now:    time.Now,
	}
}

// CreateRoom allocates a room with a fresh unique code and registers the
// creator as its first participant. A connection belongs to at most one
// room: if it was already in another room, that membership is removed and
// the change reported through the second return value.
func (s *RoomService) CreateRoom(connectionID, displayName string) (*model.RoomSnapshot, *MemberUpdate, error) {
	if displayName == "" {
		return nil, nil, apperrors.ErrEmptyName
	}

	s.mu.Lock()
	left := s.detachLocked(connectionID)

	var code string
	for {
		code = s.codes.Generate()
		if _, taken := s.rooms[code]; !taken {
			break
		}
	}

	now := s.now()
	room := model.NewRoom(code, now)
	room.AddMember(model.Participant{ConnectionID: connectionID, DisplayName: displayName})
	s.rooms[code] = &syncRoom{room: room}
	s.byConn[connectionID] = code
	s.mu.Unlock()

	s.logger.Info("Room created",
		zap.String("code", code),
		zap.String("connection_id", connectionID),
		zap.String("display_name", displayName),
	)

	return room.Snapshot(now), left, nil
}

// JoinRoom adds a participant to an existing room and returns the full
// state snapshot that participant needs to reconstruct playback. A pending
// expiry timer is cancelled unconditionally. Membership in any previous
// room is removed first and reported through the second return value.
//
// The service lock is held for the whole operation so a grace timer firing
// concurrently either sees the room still empty before the join has
// registered anything, or sees the new member after.
func (s *RoomService) JoinRoom(code, connectionID, displayName string) (*model.RoomSnapshot, *MemberUpdate, error) {
	if displayName == "" {
		return nil, nil, apperrors.ErrEmptyName
	}
	code = roomcode.Normalize(code)

	s.mu.Lock()
	defer s.mu.Unlock()

	sr, ok := s.rooms[code]
	if !ok {
		return nil, nil, apperrors.ErrRoomNotFound
	}

	left := s.detachLocked(connectionID)
	s.byConn[connectionID] = code

	sr.mu.Lock()
	defer sr.mu.Unlock()

	if sr.expiry != nil {
		sr.expiry.Stop()
		sr.expiry = nil
	}
	sr.room.AddMember(model.Participant{ConnectionID: connectionID, DisplayName: displayName})

	s.logger.Info("Participant joined",
		zap.String("code", code),
		zap.String("connection_id", connectionID),
		zap.String("display_name", displayName),
		zap.Int("members", len(sr.room.Members)),
	)

	return sr.room.Snapshot(s.now()), left, nil
}

// LeaveRoom removes the participant behind the connection. When the room
// becomes empty its deletion is scheduled after the grace period rather
// than performed immediately, so a page reload does not kill the session.
func (s *RoomService) LeaveRoom(connectionID string) (*MemberUpdate, bool) {
	s.mu.Lock()
	update := s.detachLocked(connectionID)
	s.mu.Unlock()
	if update == nil {
		return nil, false
	}
	return update, true
}

// detachLocked removes the connection from whatever room it is in,
// arming the grace timer when the room empties. Caller holds s.mu.
func (s *RoomService) detachLocked(connectionID string) *MemberUpdate {
	code, ok := s.byConn[connectionID]
	if !ok {
		return nil
	}
	delete(s.byConn, connectionID)
	sr, ok := s.rooms[code]
	if !ok {
		return nil
	}

	sr.mu.Lock()
	defer sr.mu.Unlock()

	p, removed := sr.room.RemoveMember(connectionID)
	if !removed {
		return nil
	}

	if sr.room.Empty() && sr.expiry == nil {
		sr.expiry = time.AfterFunc(s.grace, func() { s.expireRoom(code) })
		s.logger.Info("Room empty, expiry scheduled",
			zap.String("code", code),
			zap.Duration("grace_period", s.grace),
		)
	}

	s.logger.Info("Participant left",
		zap.String("code", code),
		zap.String("connection_id", connectionID),
		zap.String("display_name", p.DisplayName),
		zap.Int("members", len(sr.room.Members)),
	)

	return &MemberUpdate{
		RoomCode:    code,
		DisplayName: p.DisplayName,
		Members:     sr.room.MemberNames(),
	}
}

// expireRoom runs when a grace timer fires. Membership is re-checked at
// fire time: a cancellation can race the timer, and a repopulated room
// must survive.
func (s *RoomService) expireRoom(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sr, ok := s.rooms[code]
	if !ok {
		return
	}

	sr.mu.Lock()
	empty := sr.room.Empty()
	sr.mu.Unlock()
	if !empty {
		return
	}

	delete(s.rooms, code)
	s.logger.Info("Room expired", zap.String("code", code))
}

// Play applies a play intent at the given position.
func (s *RoomService) Play(code string, position float64) error {
	return s.withRoom(code, func(r *model.Room, now time.Time) error {
		r.Play(position, now)
		return nil
	})
}

// Pause applies a pause intent at the given position.
func (s *RoomService) Pause(code string, position float64) error {
	return s.withRoom(code, func(r *model.Room, now time.Time) error {
		r.Pause(position, now)
		return nil
	})
}

// Seek moves the transport position, leaving the play state alone.
func (s *RoomService) Seek(code string, position float64) error {
	return s.withRoom(code, func(r *model.Room, now time.Time) error {
		r.Seek(position, now)
		return nil
	})
}

// PlayIndex selects a queue item and restarts playback from zero.
// Out-of-range indices return ErrInvalidIndex; callers treat that as a
// stale-UI race, not a fault.
func (s *RoomService) PlayIndex(code string, index int) error {
	return s.withRoom(code, func(r *model.Room, now time.Time) error {
		if !r.PlayIndex(index, now) {
			return apperrors.ErrInvalidIndex
		}
		return nil
	})
}

// NextSong advances to the next queue item. At the end of the queue (or on
// an empty one) it reports ok=false and changes nothing; redundant calls
// are expected from simultaneous end-of-media events.
func (s *RoomService) NextSong(code string) (int, bool, error) {
	var index int
	advanced := false
	err := s.withRoom(code, func(r *model.Room, now time.Time) error {
		next, ok := r.NextIndex()
		if !ok {
			return nil
		}
		r.PlayIndex(next, now)
		index = next
		advanced = true
		return nil
	})
	return index, advanced, err
}

// Enqueue appends one item and returns the resulting queue state.
func (s *RoomService) Enqueue(code string, item model.QueueItem) (*QueueUpdate, error) {
	var update *QueueUpdate
	err := s.withRoom(code, func(r *model.Room, now time.Time) error {
		autoPlay := r.Enqueue(item)
		update = queueUpdate(r, autoPlay)
		return nil
	})
	return update, err
}

// BulkLoad appends a whole playlist as one mutation with one update.
func (s *RoomService) BulkLoad(code string, items []model.QueueItem) (*QueueUpdate, error) {
	var update *QueueUpdate
	err := s.withRoom(code, func(r *model.Room, now time.Time) error {
		autoPlay := r.BulkLoad(items)
		update = queueUpdate(r, autoPlay)
		return nil
	})
	return update, err
}

// Reorder moves a queue item. Out-of-range indices are a silent no-op and
// return a nil update.
func (s *RoomService) Reorder(code string, from, to int) (*QueueUpdate, error) {
	var update *QueueUpdate
	err := s.withRoom(code, func(r *model.Room, now time.Time) error {
		if r.Reorder(from, to) {
			update = queueUpdate(r, false)
		}
		return nil
	})
	return update, err
}

// Snapshot returns the current extrapolated state of a room.
func (s *RoomService) Snapshot(code string) (*model.RoomSnapshot, error) {
	var snap *model.RoomSnapshot
	err := s.withRoom(code, func(r *model.Room, now time.Time) error {
		snap = r.Snapshot(now)
		return nil
	})
	return snap, err
}

// RoomOf returns the room code a connection is joined to.
func (s *RoomService) RoomOf(connectionID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.byConn[connectionID]
	return code, ok
}

// DisplayNameOf returns the display name registered for a connection.
func (s *RoomService) DisplayNameOf(connectionID string) (string, bool) {
	s.mu.RLock()
	code, ok := s.byConn[connectionID]
	sr := s.rooms[code]
	s.mu.RUnlock()
	if !ok || sr == nil {
		return "", false
	}

	sr.mu.Lock()
	defer sr.mu.Unlock()
	for _, m := range sr.room.Members {
		if m.ConnectionID == connectionID {
			return m.DisplayName, true
		}
	}
	return "", false
}

// Stats returns service-level counters.
func (s *RoomService) Stats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]int{
		"active_rooms":  len(s.rooms),
		"total_members": len(s.byConn),
	}
}

// withRoom runs fn with the room's mutex held. Broadcast payloads are
// built inside fn (copies, not aliases) so fan-out can happen after the
// lock is released.
func (s *RoomService) withRoom(code string, fn func(r *model.Room, now time.Time) error) error {
	code = roomcode.Normalize(code)

	s.mu.RLock()
	sr, ok := s.rooms[code]
	s.mu.RUnlock()
	if !ok {
		return apperrors.ErrRoomNotFound
	}

	sr.mu.Lock()
	defer sr.mu.Unlock()
	return fn(sr.room, s.now())
}

func queueUpdate(r *model.Room, autoPlay bool) *QueueUpdate {
	queue := make([]model.QueueItem, len(r.Queue))
	copy(queue, r.Queue)
	return &QueueUpdate{
		Queue:        queue,
		CurrentIndex: r.CurrentIndex,
		AutoPlay:     autoPlay,
	}
}
