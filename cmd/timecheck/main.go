package main

import (
	"context"
	"crypto/rand"
	"log"
	"net/http"

	"github.com/xlab/closer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hminw18/timecheck-sub000/internal/api"
	availability_service "github.com/hminw18/timecheck-sub000/internal/business/availability"
	events_service "github.com/hminw18/timecheck-sub000/internal/business/events"
	schedule_service "github.com/hminw18/timecheck-sub000/internal/business/schedule"
	sync_service "github.com/hminw18/timecheck-sub000/internal/business/sync"
	"github.com/hminw18/timecheck-sub000/internal/calendar"
	"github.com/hminw18/timecheck-sub000/internal/calendar/apple"
	"github.com/hminw18/timecheck-sub000/internal/calendar/google"
	"github.com/hminw18/timecheck-sub000/internal/config"
	"github.com/hminw18/timecheck-sub000/internal/database"
	"github.com/hminw18/timecheck-sub000/internal/database/connections"
	"github.com/hminw18/timecheck-sub000/internal/database/events"
	"github.com/hminw18/timecheck-sub000/internal/database/participants"
	"github.com/hminw18/timecheck-sub000/internal/database/schedules"
	"github.com/hminw18/timecheck-sub000/internal/database/user"
	"github.com/hminw18/timecheck-sub000/internal/pkg/jwt"
	"github.com/hminw18/timecheck-sub000/internal/pkg/oauth"
	"github.com/hminw18/timecheck-sub000/internal/pkg/vault"
	"github.com/hminw18/timecheck-sub000/internal/redis"
)

func main() {
	ctx := context.Background()

	config.MustValidate()

	logger, err := initLogger()
	if err != nil {
		log.Fatalf("unable to initializae logger: %v", err)
	}

	jwts := jwt.NewManger()
	tokenParser := oauth.NewParser()

	redisPool := redis.NewRedisPool(logger)
	refreshTokens := redis.NewRefreshTokenRepository(redisPool)
	scheduleEvents := redis.NewScheduleEvents(redisPool, logger)

	db, err := database.NewPGX(ctx)
	if err != nil {
		log.Fatalf("unable to initializae db: %v", err)
	}
	usersRepository := user.NewRepository()
	eventsRepository := events.NewRepository()
	participantsRepository := participants.NewRepository()
	schedulesRepository := schedules.NewRepository()
	connectionsRepository := connections.NewRepository()

	secrets := vault.New(config.VaultSecret(), config.VaultMaxKeys())
	normalizer := calendar.NewNormalizer(logger)
	googleProvider := google.NewProvider(tokenParser)
	appleProvider := apple.NewProvider()

	eventsService := events_service.NewService(db, eventsRepository)
	scheduleService := schedule_service.NewService(
		db,
		logger,
		eventsRepository,
		participantsRepository,
		schedulesRepository,
		scheduleEvents,
	)
	availabilityService := availability_service.NewService(db, eventsRepository, participantsRepository)
	watcher := availability_service.NewWatcher(availabilityService, scheduleEvents, logger)
	syncService := sync_service.NewService(
		db,
		logger,
		connectionsRepository,
		eventsRepository,
		participantsRepository,
		secrets,
		googleProvider,
		appleProvider,
		normalizer,
		scheduleService,
		config.SyncTimeout(),
	)

	api, err := api.NewApi(
		logger,
		rand.Reader,
		jwts,
		tokenParser,
		refreshTokens,
		db,
		usersRepository,
		eventsService,
		scheduleService,
		availabilityService,
		watcher,
		syncService,
	)
	if err != nil {
		logger.Fatalw("error initiating api", "err", err)
	}

	errLogger, err := zap.NewStdLogAt(logger.Desugar(), zap.ErrorLevel)
	if err != nil {
		logger.Fatalw("error initiating server logger", "err", err)
	}

	server := &http.Server{
		Addr:     ":" + config.Port(),
		Handler:  api,
		ErrorLog: errLogger,
	}

	logger.Infow("Started server", "port", config.Port())
	logger.Fatalw("server error", "err", server.ListenAndServe())
}

func initLogger() (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error

	if config.Production() {
		logger, err = zap.NewProduction()
	} else {
		conf := zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err = conf.Build()
	}

	if err != nil {
		return nil, err
	}

	closer.Bind(func() {
		_ = logger.Sync()
	})

	return logger.Sugar(), nil
}
