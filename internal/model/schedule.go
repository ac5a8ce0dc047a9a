package model

import "time"

// SourceTag names the producer of a slot's unavailability. A slot keeps the
// tag of the highest-precedence producer that claimed it, so disconnecting a
// source removes exactly its own contribution.
type SourceTag string

const (
	SourceManual SourceTag = "manual"
	SourceFixed  SourceTag = "fixed"
	SourceGoogle SourceTag = "google"
	SourceApple  SourceTag = "apple"
)

// CalendarSources lists the external sources in merge order (lowest
// precedence first).
var CalendarSources = []SourceTag{SourceGoogle, SourceApple}

func IsCalendarSource(tag SourceTag) bool {
	for _, s := range CalendarSources {
		if s == tag {
			return true
		}
	}
	return false
}

// UserSchedule is one participant's response to an event. Unavailable and
// IfNeeded are mutually exclusive per slot.
type UserSchedule struct {
	Unavailable SlotSet
	IfNeeded    SlotSet
	SourceOf    map[SlotID]SourceTag
}

func NewUserSchedule() *UserSchedule {
	return &UserSchedule{
		Unavailable: NewSlotSet(),
		IfNeeded:    NewSlotSet(),
		SourceOf:    make(map[SlotID]SourceTag),
	}
}

func (s *UserSchedule) Clone() *UserSchedule {
	res := &UserSchedule{
		Unavailable: s.Unavailable.Clone(),
		IfNeeded:    s.IfNeeded.Clone(),
		SourceOf:    make(map[SlotID]SourceTag, len(s.SourceOf)),
	}
	for id, tag := range s.SourceOf {
		res.SourceOf[id] = tag
	}
	return res
}

func (s *UserSchedule) Equal(other *UserSchedule) bool {
	if !s.Unavailable.Equal(other.Unavailable) || !s.IfNeeded.Equal(other.IfNeeded) {
		return false
	}
	if len(s.SourceOf) != len(other.SourceOf) {
		return false
	}
	for id, tag := range s.SourceOf {
		if other.SourceOf[id] != tag {
			return false
		}
	}
	return true
}

// Participant is the persisted (event, user) document. Version guards
// against concurrent writes of the same document.
type Participant struct {
	EventID     string
	UserID      int64
	DisplayName string
	PhotoURL    string
	Schedule    *UserSchedule
	UpdatedAt   time.Time
	Version     int64
}

// UserRef is the short user identity carried in aggregate buckets.
type UserRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Photo string `json:"photo,omitempty"`
}

type Bucket struct {
	Count int       `json:"count"`
	Users []UserRef `json:"users"`
}

type GroupSlot struct {
	Available Bucket `json:"available"`
	IfNeeded  Bucket `json:"if_needed"`
}

// GroupSchedule is the derived per-slot tally over an event's universe.
// It is rebuilt whole on every participant change, never patched.
type GroupSchedule map[SlotID]*GroupSlot

// TimeRange is one ranked "most available" answer: a run of contiguous
// slots in a single column together with the users free for all of it.
type TimeRange struct {
	Column       string    `json:"column"`
	StartMinutes int       `json:"start_minutes"`
	EndMinutes   int       `json:"end_minutes"`
	Count        int       `json:"count"`
	Users        []UserRef `json:"users"`
}

// ScheduleChange is the message published when a participant document is
// written; aggregate watchers consume these to trigger rebuilds.
type ScheduleChange struct {
	EventID   string    `json:"event_id"`
	UserID    int64     `json:"user_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FixedSchedule is a user's standing weekly unavailability, stored as
// weekday-token slot ids independent of any event.
type FixedSchedule struct {
	UserID    int64
	Slots     SlotSet
	UpdatedAt time.Time
}
