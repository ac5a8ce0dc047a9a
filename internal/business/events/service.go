// Package events owns the availability poll lifecycle.
package events

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/hminw18/timecheck-sub000/internal/database"
	"github.com/hminw18/timecheck-sub000/internal/model"
)

type Service struct {
	db               database.PGX
	eventsRepository eventsRepository
}

type eventsRepository interface {
	CreateEvent(ctx context.Context, q database.Queryable, id string, event *model.EventCreate) (*model.Event, error)
	GetEventByID(ctx context.Context, q database.Queryable, id string) (*model.Event, error)
	GetEventsByCreator(ctx context.Context, q database.Queryable, creatorID int64) ([]*model.Event, error)
	DeleteEvent(ctx context.Context, q database.Queryable, id string) error
}

func NewService(db database.PGX, repo eventsRepository) *Service {
	return &Service{
		db:               db,
		eventsRepository: repo,
	}
}

func (s *Service) CreateEvent(ctx context.Context, info *model.EventCreate) (*model.Event, error) {
	normalizeColumns(info)

	event, err := s.eventsRepository.CreateEvent(ctx, s.db, uuid.NewString(), info)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.CreateEvent: %w", err)
	}

	return event, nil
}

func (s *Service) GetEventByID(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.eventsRepository.GetEventByID(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEventByID: %w", err)
	}

	return event, nil
}

func (s *Service) GetEventsByCreator(ctx context.Context, creatorID int64) ([]*model.Event, error) {
	events, err := s.eventsRepository.GetEventsByCreator(ctx, s.db, creatorID)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEventsByCreator: %w", err)
	}

	return events, nil
}

// DeleteEvent removes an event; only the creator may do so.
func (s *Service) DeleteEvent(ctx context.Context, id string, userID int64) error {
	event, err := s.eventsRepository.GetEventByID(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("eventsRepository.GetEventByID: %w", err)
	}

	if event.CreatorID != userID {
		return model.ErrNoRecord
	}

	if err := s.eventsRepository.DeleteEvent(ctx, s.db, id); err != nil {
		return fmt.Errorf("eventsRepository.DeleteEvent: %w", err)
	}

	return nil
}

// normalizeColumns sorts and dedupes the selected columns so grid order is
// stable regardless of client click order.
func normalizeColumns(info *model.EventCreate) {
	info.SelectedDates = dedupeSorted(info.SelectedDates, func(a, b string) bool { return a < b })
	info.SelectedDays = dedupeSorted(info.SelectedDays, func(a, b string) bool {
		return weekdayIndex(a) < weekdayIndex(b)
	})
}

func dedupeSorted(items []string, less func(a, b string) bool) []string {
	if len(items) == 0 {
		return items
	}

	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })

	res := items[:1]
	for _, item := range items[1:] {
		if item != res[len(res)-1] {
			res = append(res, item)
		}
	}
	return res
}

func weekdayIndex(token string) int {
	order := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	for i, t := range order {
		if t == token {
			return i
		}
	}
	return len(order)
}
