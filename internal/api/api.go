package api

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hminw18/timecheck-sub000/internal/business/availability"
	"github.com/hminw18/timecheck-sub000/internal/database"
	"github.com/hminw18/timecheck-sub000/internal/model"
	"github.com/hminw18/timecheck-sub000/internal/pkg/oauth"
)

type Api struct {
	handler    http.Handler
	logger     *zap.SugaredLogger
	randSource io.Reader

	jwts          jwtManager
	tokenParser   tokenParser
	refreshTokens refreshTokenRepository

	db           database.PGX
	users        userRepository
	events       eventsService
	schedules    scheduleService
	availability availabilityService
	watcher      availabilityWatcher
	syncs        syncService
}

type jwtManager interface {
	CreateToken(id int64) (string, error)
	GetIdFromToken(token string) (int64, error)
}

type tokenParser interface {
	GetInfoGoogle(ctx context.Context, authCode string) (*oauth.GoogleInfo, error)
	ExchangeCalendarCode(ctx context.Context, authCode string) (string, error)
}

type refreshTokenRepository interface {
	Add(ctx context.Context, session string, id int64) error
	Get(ctx context.Context, session string) (int64, error)
	Refresh(ctx context.Context, old, new string) error
	Delete(ctx context.Context, session string) error
}

type userRepository interface {
	CreateUser(ctx context.Context, q database.Queryable, user *model.UserCreate) (int64, error)
	GetUserByEmail(ctx context.Context, q database.Queryable, email string) (*model.User, error)
	GetUserByID(ctx context.Context, q database.Queryable, id int64) (*model.User, error)
	UpdateUser(ctx context.Context, q database.Queryable, id int64, info *model.UserCreate) error
}

type eventsService interface {
	CreateEvent(ctx context.Context, info *model.EventCreate) (*model.Event, error)
	GetEventByID(ctx context.Context, id string) (*model.Event, error)
	GetEventsByCreator(ctx context.Context, creatorID int64) ([]*model.Event, error)
	DeleteEvent(ctx context.Context, id string, userID int64) error
}

type scheduleService interface {
	SaveManual(ctx context.Context, eventID string, userID int64, unavailable, ifNeeded model.SlotSet) error
	SaveFixedSchedule(ctx context.Context, userID int64, slots model.SlotSet) error
	GetFixedSchedule(ctx context.Context, userID int64) (*model.FixedSchedule, error)
	GetParticipantSchedule(ctx context.Context, eventID string, userID int64) (*model.Participant, error)
}

type availabilityService interface {
	BuildSnapshot(ctx context.Context, eventID string) (*availability.Snapshot, error)
}

type availabilityWatcher interface {
	Watch(ctx context.Context, eventID string) (<-chan *availability.Snapshot, error)
}

type syncService interface {
	Connect(ctx context.Context, userID int64, provider model.CalendarProvider, credential, account string) error
	Disconnect(ctx context.Context, userID int64, provider model.CalendarProvider) error
	GetConnections(ctx context.Context, userID int64) ([]*model.CalendarConnection, error)
	SyncUserEvent(ctx context.Context, userID int64, eventID string) error
}

func NewApi(
	logger *zap.SugaredLogger,
	randSource io.Reader,
	jwts jwtManager,
	tokenParser tokenParser,
	refreshTokens refreshTokenRepository,
	db database.PGX,
	users userRepository,
	events eventsService,
	schedules scheduleService,
	avail availabilityService,
	watcher availabilityWatcher,
	syncs syncService,
) (*Api, error) {
	a := &Api{
		logger:        logger,
		randSource:    randSource,
		jwts:          jwts,
		tokenParser:   tokenParser,
		refreshTokens: refreshTokens,
		db:            db,
		users:         users,
		events:        events,
		schedules:     schedules,
		availability:  avail,
		watcher:       watcher,
		syncs:         syncs,
	}
	a.setupHandler()

	return a, nil
}

func (a *Api) setupHandler() {
	middleware.DefaultLogger = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.logger.Debugw(r.URL.RequestURI(),
				"addr", r.RemoteAddr,
				"protocol", r.Proto,
				"method", r.Method,
			)
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewMux()

	r.Use(middleware.Logger, middleware.Recoverer, middleware.StripSlashes)
	r.NotFound(a.notFoundResponse)
	r.MethodNotAllowed(a.methodNotAllowedResponse)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signin/google", a.signInGoogleHandler)
		r.Post("/refresh", a.refreshTokenHandler)
		r.Post("/logout", a.logoutUserHandler)
	})

	r.With(a.auth).Route("/", func(r chi.Router) {
		r.With(a.userCtx).Route("/user", func(r chi.Router) {
			r.Get("/", a.getUserHandler)
			r.Get("/schedule", a.getFixedScheduleHandler)
			r.Put("/schedule", a.saveFixedScheduleHandler)
			r.Route("/calendars", func(r chi.Router) {
				r.Get("/", a.getCalendarsHandler)
				r.Post("/google", a.connectGoogleCalendarHandler)
				r.Post("/apple", a.connectAppleCalendarHandler)
				r.Delete("/{provider}", a.disconnectCalendarHandler)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Post("/", a.createEventHandler)
			r.Get("/", a.listEventsHandler)

			r.With(a.eventCtx).Route("/{eventID}", func(r chi.Router) {
				r.Get("/", a.getEventHandler)
				r.Delete("/", a.deleteEventHandler)
				r.Post("/join", a.joinEventHandler)
				r.Get("/schedule", a.getScheduleHandler)
				r.Put("/schedule", a.saveScheduleHandler)
				r.Post("/schedule/drag", a.dragScheduleHandler)
				r.Get("/availability", a.getAvailabilityHandler)
				r.Get("/availability/stream", a.streamAvailabilityHandler)
			})
		})
	})

	a.handler = r
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}
