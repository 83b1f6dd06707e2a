package model

import (
	"time"
)

// QueueItem is a single entry in a room's play queue. Items are immutable
// once created; their identity is positional.
type QueueItem struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title"`
	AddedBy string `json:"addedBy"`
}

// Participant is one connection joined to a room. A person who reconnects
// gets a fresh connection ID.
type Participant struct {
	ConnectionID string `json:"-"`
	DisplayName  string `json:"displayName"`
}

// Room holds the authoritative playback state for one session.
//
// CurrentTime and LastSyncTimestamp are only meaningful together: while
// IsPlaying is true the real transport position is CurrentTime plus the
// wall-clock time elapsed since LastSyncTimestamp. Use TrueTime to read it.
type Room struct {
	Code              string
	Queue             []QueueItem
	CurrentIndex      int // -1 when nothing is selected
	IsPlaying         bool
	CurrentTime       float64 // seconds, as of LastSyncTimestamp
	LastSyncTimestamp time.Time
	Members           []Participant // join order
	CreatedAt         time.Time
}

// NewRoom creates an empty room with nothing selected.
func NewRoom(code string, now time.Time) *Room {
	return &Room{
		Code:              code,
		Queue:             make([]QueueItem, 0),
		CurrentIndex:      -1,
		LastSyncTimestamp: now,
		CreatedAt:         now,
	}
}

// TrueTime returns the extrapolated transport position at now.
func (r *Room) TrueTime(now time.Time) float64 {
	pos := r.CurrentTime
	if r.IsPlaying {
		pos += now.Sub(r.LastSyncTimestamp).Seconds()
	}
	if pos < 0 {
		return 0
	}
	return pos
}

// Play records that playback resumed at the given position.
func (r *Room) Play(position float64, now time.Time) {
	r.IsPlaying = true
	r.CurrentTime = position
	r.LastSyncTimestamp = now
}

// Pause records that playback stopped at the given position.
func (r *Room) Pause(position float64, now time.Time) {
	r.IsPlaying = false
	r.CurrentTime = position
	r.LastSyncTimestamp = now
}

// Seek moves the transport position without changing the play state.
func (r *Room) Seek(position float64, now time.Time) {
	r.CurrentTime = position
	r.LastSyncTimestamp = now
}

// PlayIndex selects the queue item at index and restarts playback from
// zero. Returns false when index is out of range.
func (r *Room) PlayIndex(index int, now time.Time) bool {
	if index < 0 || index >= len(r.Queue) {
		return false
	}
	r.CurrentIndex = index
	r.CurrentTime = 0
	r.IsPlaying = true
	r.LastSyncTimestamp = now
	return true
}

// NextIndex returns the index the queue would advance to, or false when
// the queue is empty or already on its last item.
func (r *Room) NextIndex() (int, bool) {
	if len(r.Queue) == 0 || r.CurrentIndex >= len(r.Queue)-1 {
		return 0, false
	}
	return r.CurrentIndex + 1, true
}

// Enqueue appends an item to the queue. When the room had nothing
// selected, the new item becomes current and autoPlay is true so the
// caller knows to start playback.
func (r *Room) Enqueue(item QueueItem) (autoPlay bool) {
	autoPlay = r.CurrentIndex == -1
	r.Queue = append(r.Queue, item)
	if autoPlay {
		r.CurrentIndex = 0
	}
	return autoPlay
}

// BulkLoad appends all items in order as a single mutation. autoPlay is
// computed once against the pre-mutation state, same as Enqueue.
func (r *Room) BulkLoad(items []QueueItem) (autoPlay bool) {
	if len(items) == 0 {
		return false
	}
	autoPlay = r.CurrentIndex == -1
	r.Queue = append(r.Queue, items...)
	if autoPlay {
		r.CurrentIndex = 0
	}
	return autoPlay
}

// Reorder moves the item at from to position to, rebasing CurrentIndex so
// that it keeps pointing at the same logical item. Out-of-range indices
// are a no-op and return false.
func (r *Room) Reorder(from, to int) bool {
	n := len(r.Queue)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return false
	}

	item := r.Queue[from]
	r.Queue = append(r.Queue[:from], r.Queue[from+1:]...)
	r.Queue = append(r.Queue[:to], append([]QueueItem{item}, r.Queue[to:]...)...)

	switch {
	case r.CurrentIndex == from:
		r.CurrentIndex = to
	case from < r.CurrentIndex && r.CurrentIndex <= to:
		r.CurrentIndex--
	case to <= r.CurrentIndex && r.CurrentIndex < from:
		r.CurrentIndex++
	}
	return true
}

// AddMember appends a participant in join order.
func (r *Room) AddMember(p Participant) {
	r.Members = append(r.Members, p)
}

// RemoveMember removes the participant with the given connection ID and
// returns it. Unknown IDs return false.
func (r *Room) RemoveMember(connectionID string) (Participant, bool) {
	for i, m := range r.Members {
		if m.ConnectionID == connectionID {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			return m, true
		}
	}
	return Participant{}, false
}

// MemberNames returns display names in join order.
func (r *Room) MemberNames() []string {
	names := make([]string, len(r.Members))
	for i, m := range r.Members {
		names[i] = m.DisplayName
	}
	return names
}

// Empty reports whether the room has no participants.
func (r *Room) Empty() bool {
	return len(r.Members) == 0
}

// RoomSnapshot is the full state handed to a joining participant. It must
// reconstruct playback without replaying history, so CurrentTime is
// already extrapolated.
type RoomSnapshot struct {
	Code         string      `json:"code"`
	Queue        []QueueItem `json:"queue"`
	CurrentIndex int         `json:"currentIndex"`
	IsPlaying    bool        `json:"isPlaying"`
	CurrentTime  float64     `json:"currentTime"`
	Users        []string    `json:"users"`
}

// Snapshot captures the room state at now. The queue is copied so the
// caller can release the room lock before serializing.
func (r *Room) Snapshot(now time.Time) *RoomSnapshot {
	queue := make([]QueueItem, len(r.Queue))
	copy(queue, r.Queue)

	return &RoomSnapshot{
		Code:         r.Code,
		Queue:        queue,
		CurrentIndex: r.CurrentIndex,
		IsPlaying:    r.IsPlaying,
		CurrentTime:  r.TrueTime(now),
		Users:        r.MemberNames(),
	}
}
