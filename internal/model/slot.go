package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SlotID identifies one 30-minute cell: "<column>-<HH:mm>", where the column
// is either an ISO date ("2006-01-02") or a weekday token ("Mon".."Sun").
type SlotID string

const (
	SlotMinutes   = 30
	SlotsPerDay   = 48
	MinutesPerDay = 24 * 60

	DateColumnLayout = "2006-01-02"
)

var weekdayTokens = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func MakeSlotID(column string, minutes int) SlotID {
	return SlotID(fmt.Sprintf("%s-%s", column, MinutesToClock(minutes)))
}

// ParseSlotID splits a slot id into its column and minutes-from-midnight.
// The column itself may contain dashes, so the time is taken from the tail.
func ParseSlotID(id SlotID) (string, int, error) {
	s := string(id)
	i := strings.LastIndex(s, "-")
	if i <= 0 || i == len(s)-1 {
		return "", 0, fmt.Errorf("malformed slot id %q", id)
	}

	minutes, err := ClockToMinutes(s[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("malformed slot id %q: %w", id, err)
	}

	return s[:i], minutes, nil
}

// MinutesToClock renders minutes from midnight as "HH:mm".
func MinutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ClockToMinutes parses "HH:mm" into minutes from midnight.
func ClockToMinutes(clock string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q out of range", clock)
	}
	return h*60 + m, nil
}

// WeekdayToken returns the column token for a weekday ("Mon".."Sun").
func WeekdayToken(t time.Time) string {
	return weekdayTokens[int(t.Weekday())]
}

func IsWeekdayToken(s string) bool {
	for _, t := range weekdayTokens {
		if t == s {
			return true
		}
	}
	return false
}

// SlotSet is an unordered, deduplicated set of slot ids.
type SlotSet map[SlotID]struct{}

func NewSlotSet(ids ...SlotID) SlotSet {
	s := make(SlotSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s SlotSet) Add(id SlotID)      { s[id] = struct{}{} }
func (s SlotSet) Remove(id SlotID)   { delete(s, id) }
func (s SlotSet) Has(id SlotID) bool { _, ok := s[id]; return ok }

func (s SlotSet) Clone() SlotSet {
	res := make(SlotSet, len(s))
	for id := range s {
		res[id] = struct{}{}
	}
	return res
}

func (s SlotSet) Equal(other SlotSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// List returns the set's ids in lexicographic order.
func (s SlotSet) List() []SlotID {
	res := make([]SlotID, 0, len(s))
	for id := range s {
		res = append(res, id)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}
