package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"go.uber.org/zap"

	"github.com/hminw18/timecheck-sub000/internal/calendar"
	"github.com/hminw18/timecheck-sub000/internal/database"
	"github.com/hminw18/timecheck-sub000/internal/model"
)

type fakeConnections struct {
	conns    []*model.CalendarConnection
	statuses map[int64]model.ConnectionStatus
}

func (f *fakeConnections) CreateConnection(_ context.Context, _ database.Queryable, conn *model.CalendarConnection) (int64, error) {
	f.conns = append(f.conns, conn)
	return int64(len(f.conns)), nil
}

func (f *fakeConnections) GetConnectionsByUser(_ context.Context, _ database.Queryable, _ int64) ([]*model.CalendarConnection, error) {
	return f.conns, nil
}

func (f *fakeConnections) GetConnection(_ context.Context, _ database.Queryable, _ int64, provider model.CalendarProvider) (*model.CalendarConnection, error) {
	for _, c := range f.conns {
		if c.Provider == provider {
			return c, nil
		}
	}
	return nil, model.ErrNoRecord
}

func (f *fakeConnections) UpdateConnectionStatus(_ context.Context, _ database.Queryable, id int64, status model.ConnectionStatus) error {
	if f.statuses == nil {
		f.statuses = make(map[int64]model.ConnectionStatus)
	}
	f.statuses[id] = status
	return nil
}

func (f *fakeConnections) DeleteConnection(_ context.Context, _ database.Queryable, _ int64, provider model.CalendarProvider) error {
	for i, c := range f.conns {
		if c.Provider == provider {
			f.conns = append(f.conns[:i], f.conns[i+1:]...)
			return nil
		}
	}
	return model.ErrNoRecord
}

type fakeEvents struct {
	event *model.Event
}

func (f *fakeEvents) GetEventByID(_ context.Context, _ database.Queryable, _ string) (*model.Event, error) {
	return f.event, nil
}

type fakeMemberships struct {
	eventIDs []string
}

func (f *fakeMemberships) GetEventIDsByUser(_ context.Context, _ database.Queryable, _ int64) ([]string, error) {
	return f.eventIDs, nil
}

type plainVault struct{}

func (plainVault) Encrypt(plaintext, _ string) (string, error) { return plaintext, nil }
func (plainVault) Decrypt(ciphertext, _ string) (string, error) {
	return ciphertext, nil
}

type fakeGoogle struct {
	events []calendar.RawEvent
	err    error
	onCall func()
}

func (f *fakeGoogle) Fetch(_ context.Context, _ string, _, _ time.Time) ([]calendar.RawEvent, error) {
	if f.onCall != nil {
		f.onCall()
	}
	return f.events, f.err
}

type fakeApple struct {
	cals []*ical.Calendar
	err  error
}

func (f *fakeApple) Fetch(_ context.Context, _ string, _, _ time.Time) ([]*ical.Calendar, error) {
	return f.cals, f.err
}

type appliedCall struct {
	source model.SourceTag
	slots  model.SlotSet
}

type fakeSchedules struct {
	applied []appliedCall
	removed []model.SourceTag
}

func (f *fakeSchedules) ApplyCalendar(_ context.Context, _ string, _ int64, source model.SourceTag, slots model.SlotSet) error {
	f.applied = append(f.applied, appliedCall{source: source, slots: slots})
	return nil
}

func (f *fakeSchedules) RemoveCalendarSource(_ context.Context, _ int64, source model.SourceTag) error {
	f.removed = append(f.removed, source)
	return nil
}

// 2025-03-10 is a Monday.
func testEvent() *model.Event {
	return &model.Event{
		ID: "ev1",
		EventCreate: model.EventCreate{
			EventType:     model.EventTypeDate,
			SelectedDates: []string{"2025-03-10"},
			StartMinutes:  9 * 60,
			EndMinutes:    12 * 60,
		},
	}
}

func busyRaw() []calendar.RawEvent {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	return []calendar.RawEvent{{
		ID:    "g1",
		Start: start,
		End:   start.Add(time.Hour),
	}}
}

func newTestService(conns *fakeConnections, google *fakeGoogle, apple *fakeApple, schedules *fakeSchedules) *Service {
	logger := zap.NewNop().Sugar()
	return NewService(
		nil,
		logger,
		conns,
		&fakeEvents{event: testEvent()},
		&fakeMemberships{eventIDs: []string{"ev1"}},
		plainVault{},
		google,
		apple,
		calendar.NewNormalizer(logger),
		schedules,
		5*time.Second,
	)
}

func connection(id int64, provider model.CalendarProvider) *model.CalendarConnection {
	return &model.CalendarConnection{
		ID:       id,
		UserID:   1,
		Provider: provider,
		Status:   model.ConnectionActive,
	}
}

func TestSyncUserAppliesSlots(t *testing.T) {
	conns := &fakeConnections{conns: []*model.CalendarConnection{
		connection(1, model.ProviderGoogle),
	}}
	schedules := &fakeSchedules{}
	svc := newTestService(conns, &fakeGoogle{events: busyRaw()}, &fakeApple{}, schedules)

	if err := svc.SyncUser(context.Background(), 1); err != nil {
		t.Fatalf("SyncUser: %v", err)
	}

	if len(schedules.applied) != 1 {
		t.Fatalf("applied %d times, want 1", len(schedules.applied))
	}
	call := schedules.applied[0]
	if call.source != model.SourceGoogle {
		t.Errorf("source = %q, want google", call.source)
	}
	if len(call.slots) != 2 {
		t.Errorf("slots = %d, want 2 half-hour slots", len(call.slots))
	}
}

func TestSyncUserPartialFailure(t *testing.T) {
	conns := &fakeConnections{conns: []*model.CalendarConnection{
		connection(1, model.ProviderGoogle),
		connection(2, model.ProviderApple),
	}}
	schedules := &fakeSchedules{}
	svc := newTestService(conns,
		&fakeGoogle{err: fmt.Errorf("timeout: %w", model.ErrProviderUnavailable)},
		&fakeApple{}, schedules)

	if err := svc.SyncUser(context.Background(), 1); err != nil {
		t.Fatalf("SyncUser should not fail on one broken provider: %v", err)
	}

	if len(schedules.applied) != 1 {
		t.Fatalf("applied %d times, want 1", len(schedules.applied))
	}
	if schedules.applied[0].source != model.SourceApple {
		t.Errorf("source = %q, want apple", schedules.applied[0].source)
	}
	if len(conns.statuses) != 0 {
		t.Error("unavailable provider must not be marked expired")
	}
}

func TestSyncUserAuthExpired(t *testing.T) {
	conns := &fakeConnections{conns: []*model.CalendarConnection{
		connection(7, model.ProviderGoogle),
	}}
	schedules := &fakeSchedules{}
	svc := newTestService(conns,
		&fakeGoogle{err: fmt.Errorf("401: %w", model.ErrProviderAuthExpired)},
		&fakeApple{}, schedules)

	if err := svc.SyncUser(context.Background(), 1); err != nil {
		t.Fatalf("SyncUser: %v", err)
	}

	if conns.statuses[7] != model.ConnectionAuthExpired {
		t.Error("connection should be marked auth_expired")
	}
	if len(schedules.removed) != 1 || schedules.removed[0] != model.SourceGoogle {
		t.Errorf("removed = %v, want [google]", schedules.removed)
	}
	if len(schedules.applied) != 0 {
		t.Error("expired provider must not apply slots")
	}
}

func TestSyncDiscardsStaleResults(t *testing.T) {
	conns := &fakeConnections{conns: []*model.CalendarConnection{
		connection(1, model.ProviderGoogle),
	}}
	schedules := &fakeSchedules{}
	google := &fakeGoogle{events: busyRaw()}
	svc := newTestService(conns, google, &fakeApple{}, schedules)

	// A newer sync starts while the fetch is in flight.
	google.onCall = func() { svc.nextGeneration(1) }

	if err := svc.SyncUserEvent(context.Background(), 1, "ev1"); err != nil {
		t.Fatalf("SyncUserEvent: %v", err)
	}

	if len(schedules.applied) != 0 {
		t.Error("stale results must be discarded")
	}
}

func TestDisconnectRemovesSource(t *testing.T) {
	conns := &fakeConnections{conns: []*model.CalendarConnection{
		connection(1, model.ProviderApple),
	}}
	schedules := &fakeSchedules{}
	svc := newTestService(conns, &fakeGoogle{}, &fakeApple{}, schedules)

	if err := svc.Disconnect(context.Background(), 1, model.ProviderApple); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}

	if len(conns.conns) != 0 {
		t.Error("connection should be deleted")
	}
	if len(schedules.removed) != 1 || schedules.removed[0] != model.SourceApple {
		t.Errorf("removed = %v, want [apple]", schedules.removed)
	}

	if err := svc.Disconnect(context.Background(), 1, model.ProviderApple); !errors.Is(err, model.ErrNoRecord) {
		t.Errorf("second disconnect err = %v, want ErrNoRecord", err)
	}
}
