package model

import (
	"testing"
	"time"
)

func TestMakeAndParseSlotID(t *testing.T) {
	tests := []struct {
		column  string
		minutes int
		want    SlotID
	}{
		{"2025-03-14", 9 * 60, "2025-03-14-09:00"},
		{"2025-03-14", 23*60 + 30, "2025-03-14-23:30"},
		{"Mon", 0, "Mon-00:00"},
		{"Sun", 13*60 + 30, "Sun-13:30"},
	}

	for _, tt := range tests {
		got := MakeSlotID(tt.column, tt.minutes)
		if got != tt.want {
			t.Errorf("MakeSlotID(%q, %d) = %q, want %q", tt.column, tt.minutes, got, tt.want)
		}

		col, minutes, err := ParseSlotID(got)
		if err != nil {
			t.Fatalf("ParseSlotID(%q): %v", got, err)
		}
		if col != tt.column || minutes != tt.minutes {
			t.Errorf("ParseSlotID(%q) = (%q, %d), want (%q, %d)", got, col, minutes, tt.column, tt.minutes)
		}
	}
}

func TestParseSlotIDMalformed(t *testing.T) {
	for _, id := range []SlotID{"", "Mon", "-09:00", "Mon-", "Mon-25:00", "Mon-ab:cd"} {
		if _, _, err := ParseSlotID(id); err == nil {
			t.Errorf("ParseSlotID(%q) should fail", id)
		}
	}
}

func TestWeekdayToken(t *testing.T) {
	// 2025-03-10 is a Monday.
	d := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	for i, want := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		got := WeekdayToken(d.AddDate(0, 0, i))
		if got != want {
			t.Errorf("WeekdayToken(+%dd) = %q, want %q", i, got, want)
		}
	}
}

func TestSlotSetOperations(t *testing.T) {
	s := NewSlotSet("Mon-09:00", "Mon-09:30")
	if !s.Has("Mon-09:00") || s.Has("Mon-10:00") {
		t.Error("membership after NewSlotSet is wrong")
	}

	s.Add("Mon-09:00") // dedup
	if len(s) != 2 {
		t.Errorf("set size = %d, want 2", len(s))
	}

	clone := s.Clone()
	clone.Remove("Mon-09:00")
	if !s.Has("Mon-09:00") {
		t.Error("Clone must not share storage")
	}
	if s.Equal(clone) {
		t.Error("sets of different size reported equal")
	}

	list := s.List()
	if len(list) != 2 || list[0] != "Mon-09:00" || list[1] != "Mon-09:30" {
		t.Errorf("List() = %v, want sorted ids", list)
	}
}
