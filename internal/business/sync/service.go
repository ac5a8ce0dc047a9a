// Package sync pulls external calendars and folds them into participant
// schedules.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/emersion/go-ical"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hminw18/timecheck-sub000/internal/calendar"
	"github.com/hminw18/timecheck-sub000/internal/database"
	"github.com/hminw18/timecheck-sub000/internal/model"
)

type Service struct {
	db          database.PGX
	logger      *zap.SugaredLogger
	connections connectionsRepository
	events      eventsRepository
	memberships membershipRepository
	vault       secretVault
	google      googleProvider
	apple       appleProvider
	normalizer  *calendar.Normalizer
	schedules   scheduleService
	timeout     time.Duration

	mu          sync.Mutex
	generations map[int64]uint64
}

type connectionsRepository interface {
	CreateConnection(ctx context.Context, q database.Queryable, conn *model.CalendarConnection) (int64, error)
	GetConnectionsByUser(ctx context.Context, q database.Queryable, userID int64) ([]*model.CalendarConnection, error)
	GetConnection(ctx context.Context, q database.Queryable, userID int64, provider model.CalendarProvider) (*model.CalendarConnection, error)
	UpdateConnectionStatus(ctx context.Context, q database.Queryable, id int64, status model.ConnectionStatus) error
	DeleteConnection(ctx context.Context, q database.Queryable, userID int64, provider model.CalendarProvider) error
}

type eventsRepository interface {
	GetEventByID(ctx context.Context, q database.Queryable, id string) (*model.Event, error)
}

type membershipRepository interface {
	GetEventIDsByUser(ctx context.Context, q database.Queryable, userID int64) ([]string, error)
}

type secretVault interface {
	Encrypt(plaintext, context string) (string, error)
	Decrypt(ciphertext, context string) (string, error)
}

type googleProvider interface {
	Fetch(ctx context.Context, refreshToken string, windowStart, windowEnd time.Time) ([]calendar.RawEvent, error)
}

type appleProvider interface {
	Fetch(ctx context.Context, credential string, windowStart, windowEnd time.Time) ([]*ical.Calendar, error)
}

type scheduleService interface {
	ApplyCalendar(ctx context.Context, eventID string, userID int64, source model.SourceTag, slots model.SlotSet) error
	RemoveCalendarSource(ctx context.Context, userID int64, source model.SourceTag) error
}

func NewService(
	db database.PGX,
	logger *zap.SugaredLogger,
	connections connectionsRepository,
	events eventsRepository,
	memberships membershipRepository,
	vault secretVault,
	google googleProvider,
	apple appleProvider,
	normalizer *calendar.Normalizer,
	schedules scheduleService,
	timeout time.Duration,
) *Service {
	return &Service{
		db:          db,
		logger:      logger,
		connections: connections,
		events:      events,
		memberships: memberships,
		vault:       vault,
		google:      google,
		apple:       apple,
		normalizer:  normalizer,
		schedules:   schedules,
		timeout:     timeout,
		generations: make(map[int64]uint64),
	}
}

// Connect stores a provider link with the credential sealed in the vault
// and folds the calendar into the user's events.
func (s *Service) Connect(ctx context.Context, userID int64, provider model.CalendarProvider, credential, account string) error {
	sealed, err := s.vault.Encrypt(credential, credentialContext(userID, provider))
	if err != nil {
		return fmt.Errorf("vault.Encrypt: %w", err)
	}

	conn := &model.CalendarConnection{
		UserID:     userID,
		Provider:   provider,
		Credential: sealed,
		Account:    account,
		Status:     model.ConnectionActive,
	}
	if _, err := s.connections.CreateConnection(ctx, s.db, conn); err != nil {
		return fmt.Errorf("connections.CreateConnection: %w", err)
	}

	return s.SyncUser(ctx, userID)
}

// Disconnect removes the link and strips the source's slots everywhere.
func (s *Service) Disconnect(ctx context.Context, userID int64, provider model.CalendarProvider) error {
	if err := s.connections.DeleteConnection(ctx, s.db, userID, provider); err != nil {
		return fmt.Errorf("connections.DeleteConnection: %w", err)
	}

	if err := s.schedules.RemoveCalendarSource(ctx, userID, provider.SourceTag()); err != nil {
		return fmt.Errorf("schedules.RemoveCalendarSource: %w", err)
	}

	return nil
}

func (s *Service) GetConnections(ctx context.Context, userID int64) ([]*model.CalendarConnection, error) {
	conns, err := s.connections.GetConnectionsByUser(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("connections.GetConnectionsByUser: %w", err)
	}

	return conns, nil
}

// SyncUser refreshes every connected calendar across every event the user
// participates in. Providers run concurrently with a per-fetch timeout and
// fail independently; one broken feed never blocks the other.
func (s *Service) SyncUser(ctx context.Context, userID int64) error {
	gen := s.nextGeneration(userID)

	eventIDs, err := s.memberships.GetEventIDsByUser(ctx, s.db, userID)
	if err != nil {
		return fmt.Errorf("memberships.GetEventIDsByUser: %w", err)
	}

	for _, eventID := range eventIDs {
		if err := s.syncEvent(ctx, userID, eventID, gen); err != nil {
			return err
		}
	}

	return nil
}

// SyncUserEvent refreshes connected calendars for one event, typically on
// first join.
func (s *Service) SyncUserEvent(ctx context.Context, userID int64, eventID string) error {
	return s.syncEvent(ctx, userID, eventID, s.nextGeneration(userID))
}

func (s *Service) syncEvent(ctx context.Context, userID int64, eventID string, gen uint64) error {
	event, err := s.events.GetEventByID(ctx, s.db, eventID)
	if err != nil {
		return fmt.Errorf("events.GetEventByID: %w", err)
	}

	conns, err := s.connections.GetConnectionsByUser(ctx, s.db, userID)
	if err != nil {
		return fmt.Errorf("connections.GetConnectionsByUser: %w", err)
	}

	windowStart, windowEnd := event.Window(time.Now())

	g, gctx := errgroup.WithContext(ctx)
	results := make([]model.SlotSet, len(conns))

	for i, conn := range conns {
		i, conn := i, conn
		g.Go(func() error {
			slots, err := s.fetchConnection(gctx, conn, &event.EventCreate, windowStart, windowEnd)
			if err != nil {
				s.handleFetchError(ctx, conn, err)
				return nil
			}
			results[i] = slots
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// A newer sync for this user may have started while we were fetching;
	// its results supersede ours.
	if !s.isCurrent(userID, gen) {
		s.logger.Debugw("discarding stale sync results",
			"user_id", userID, "event_id", eventID)
		return nil
	}

	for i, conn := range conns {
		if results[i] == nil {
			continue
		}
		if err := s.schedules.ApplyCalendar(ctx, eventID, userID, conn.Provider.SourceTag(), results[i]); err != nil {
			return fmt.Errorf("schedules.ApplyCalendar: %w", err)
		}
	}

	return nil
}

func (s *Service) fetchConnection(ctx context.Context, conn *model.CalendarConnection, event *model.EventCreate, windowStart, windowEnd time.Time) (model.SlotSet, error) {
	credential, err := s.vault.Decrypt(conn.Credential, credentialContext(conn.UserID, conn.Provider))
	if err != nil {
		return nil, fmt.Errorf("vault.Decrypt: %w", err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var normalized []calendar.NormalizedEvent
	switch conn.Provider {
	case model.ProviderGoogle:
		raw, err := s.google.Fetch(fetchCtx, credential, windowStart, windowEnd)
		if err != nil {
			return nil, err
		}
		normalized = s.normalizer.NormalizeREST(raw, event, model.SourceGoogle)
	case model.ProviderApple:
		cals, err := s.apple.Fetch(fetchCtx, credential, windowStart, windowEnd)
		if err != nil {
			return nil, err
		}
		normalized = s.normalizer.NormalizeICal(cals, event, model.SourceApple, windowStart, windowEnd)
	default:
		return nil, fmt.Errorf("unknown provider %q", conn.Provider)
	}

	return calendar.SlotSet(normalized), nil
}

// handleFetchError marks expired connections and clears their slots so the
// client sees a reconnect prompt instead of stale blocks.
func (s *Service) handleFetchError(ctx context.Context, conn *model.CalendarConnection, err error) {
	if !errors.Is(err, model.ErrProviderAuthExpired) {
		s.logger.Errorw("calendar fetch failed",
			"user_id", conn.UserID, "provider", conn.Provider, "err", err)
		return
	}

	s.logger.Infow("calendar credentials expired",
		"user_id", conn.UserID, "provider", conn.Provider)

	if err := s.connections.UpdateConnectionStatus(ctx, s.db, conn.ID, model.ConnectionAuthExpired); err != nil {
		s.logger.Errorw("failed to mark connection expired",
			"connection_id", conn.ID, "err", err)
	}
	if err := s.schedules.RemoveCalendarSource(ctx, conn.UserID, conn.Provider.SourceTag()); err != nil {
		s.logger.Errorw("failed to clear expired source",
			"user_id", conn.UserID, "provider", conn.Provider, "err", err)
	}
}

func (s *Service) nextGeneration(userID int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[userID]++
	return s.generations[userID]
}

func (s *Service) isCurrent(userID int64, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID] == gen
}

func credentialContext(userID int64, provider model.CalendarProvider) string {
	return fmt.Sprintf("connection:%d:%s", userID, provider)
}
