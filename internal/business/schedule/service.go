package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hminw18/timecheck-sub000/internal/database"
	"github.com/hminw18/timecheck-sub000/internal/model"
)

// conflictRetries bounds the read-merge-write loop for writers with no
// user behind them. User-facing saves surface the conflict instead.
const conflictRetries = 3

type Service struct {
	db           database.PGX
	logger       *zap.SugaredLogger
	events       eventsRepository
	participants participantsRepository
	fixed        fixedRepository
	publisher    changePublisher
}

type eventsRepository interface {
	GetEventByID(ctx context.Context, q database.Queryable, id string) (*model.Event, error)
}

type participantsRepository interface {
	GetParticipant(ctx context.Context, q database.Queryable, eventID string, userID int64) (*model.Participant, error)
	GetEventIDsByUser(ctx context.Context, q database.Queryable, userID int64) ([]string, error)
	UpsertParticipant(ctx context.Context, q database.Queryable, p *model.Participant) error
}

type fixedRepository interface {
	GetFixedSchedule(ctx context.Context, q database.Queryable, userID int64) (*model.FixedSchedule, error)
	SetFixedSchedule(ctx context.Context, q database.Queryable, schedule *model.FixedSchedule) error
}

type changePublisher interface {
	Publish(ctx context.Context, change *model.ScheduleChange) error
}

func NewService(
	db database.PGX,
	logger *zap.SugaredLogger,
	events eventsRepository,
	participants participantsRepository,
	fixed fixedRepository,
	publisher changePublisher,
) *Service {
	return &Service{
		db:           db,
		logger:       logger,
		events:       events,
		participants: participants,
		fixed:        fixed,
		publisher:    publisher,
	}
}

// SaveManual replaces the participant's manual layer with the given sets
// and re-merges. A concurrent write of the same document surfaces as
// ErrPersistenceConflict for the client to retry against fresh state.
func (s *Service) SaveManual(ctx context.Context, eventID string, userID int64, unavailable, ifNeeded model.SlotSet) error {
	return s.apply(ctx, eventID, userID, 1, func(l *Layers) {
		l.SetManual(unavailable, ifNeeded)
	})
}

// ApplyCalendar replaces one calendar source's contribution for a single
// event. Sync workers call this; conflicts retry internally.
func (s *Service) ApplyCalendar(ctx context.Context, eventID string, userID int64, source model.SourceTag, slots model.SlotSet) error {
	return s.apply(ctx, eventID, userID, conflictRetries, func(l *Layers) {
		l.SetCalendar(source, slots)
	})
}

// RemoveCalendarSource strips one source's slots from every event the
// user participates in. Slots claimed by a higher-precedence layer are
// untouched because the merge recomputes from the remaining layers.
func (s *Service) RemoveCalendarSource(ctx context.Context, userID int64, source model.SourceTag) error {
	eventIDs, err := s.participants.GetEventIDsByUser(ctx, s.db, userID)
	if err != nil {
		return fmt.Errorf("participants.GetEventIDsByUser: %w", err)
	}

	for _, eventID := range eventIDs {
		err := s.apply(ctx, eventID, userID, conflictRetries, func(l *Layers) {
			l.RemoveCalendar(source)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// SaveFixedSchedule persists the standing weekly unavailability and
// re-merges it into every event the user participates in.
func (s *Service) SaveFixedSchedule(ctx context.Context, userID int64, slots model.SlotSet) error {
	weekly := model.NewSlotSet()
	for id := range slots {
		token, _, err := model.ParseSlotID(id)
		if err != nil || !model.IsWeekdayToken(token) {
			return fmt.Errorf("slot %q: %w", id, model.ErrMalformedEvent)
		}
		weekly.Add(id)
	}

	fixed := &model.FixedSchedule{
		UserID:    userID,
		Slots:     weekly,
		UpdatedAt: time.Now(),
	}
	if err := s.fixed.SetFixedSchedule(ctx, s.db, fixed); err != nil {
		return fmt.Errorf("fixed.SetFixedSchedule: %w", err)
	}

	eventIDs, err := s.participants.GetEventIDsByUser(ctx, s.db, userID)
	if err != nil {
		return fmt.Errorf("participants.GetEventIDsByUser: %w", err)
	}

	for _, eventID := range eventIDs {
		event, err := s.events.GetEventByID(ctx, s.db, eventID)
		if err != nil {
			return fmt.Errorf("events.GetEventByID: %w", err)
		}

		projected := ProjectFixed(weekly, &event.EventCreate)
		err = s.apply(ctx, eventID, userID, conflictRetries, func(l *Layers) {
			l.Fixed = projected
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) GetFixedSchedule(ctx context.Context, userID int64) (*model.FixedSchedule, error) {
	fixed, err := s.fixed.GetFixedSchedule(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("fixed.GetFixedSchedule: %w", err)
	}

	return fixed, nil
}

func (s *Service) GetParticipantSchedule(ctx context.Context, eventID string, userID int64) (*model.Participant, error) {
	p, err := s.participants.GetParticipant(ctx, s.db, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("participants.GetParticipant: %w", err)
	}

	return p, nil
}

// apply runs one read-merge-write round: load the participant document
// (creating an empty one for first-time writers), mutate its layers,
// re-merge against the event universe and persist. An unchanged merge
// result writes nothing and publishes nothing.
func (s *Service) apply(ctx context.Context, eventID string, userID int64, attempts int, mutate func(*Layers)) error {
	event, err := s.events.GetEventByID(ctx, s.db, eventID)
	if err != nil {
		return fmt.Errorf("events.GetEventByID: %w", err)
	}

	for attempt := 0; ; attempt++ {
		participant, err := s.participants.GetParticipant(ctx, s.db, eventID, userID)
		if err != nil {
			if !errors.Is(err, model.ErrNoRecord) {
				return fmt.Errorf("participants.GetParticipant: %w", err)
			}
			participant = &model.Participant{
				EventID:  eventID,
				UserID:   userID,
				Schedule: model.NewUserSchedule(),
			}
		}

		layers := LayersFromSchedule(participant.Schedule)
		mutate(layers)

		merged := layers.Merge(&event.EventCreate)
		if participant.Version != 0 && merged.Equal(participant.Schedule) {
			return nil
		}

		participant.Schedule = merged
		participant.UpdatedAt = time.Now()

		err = s.participants.UpsertParticipant(ctx, s.db, participant)
		if err == nil {
			break
		}
		if errors.Is(err, model.ErrPersistenceConflict) && attempt+1 < attempts {
			continue
		}
		return fmt.Errorf("participants.UpsertParticipant: %w", err)
	}

	change := &model.ScheduleChange{
		EventID:   eventID,
		UserID:    userID,
		UpdatedAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, change); err != nil {
		// The write landed; watchers converge on the next change.
		s.logger.Errorw("failed to publish schedule change",
			"event_id", eventID, "user_id", userID, "err", err)
	}

	return nil
}
