package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"github.com/hminw18/timecheck-sub000/internal/model"
)

const scheduleChannelPrefix = "schedule_changes:"

// ScheduleEvents fans participant writes out to aggregate watchers over a
// redis pub/sub channel per event. Delivery is at-most-once; watchers do a
// full rebuild from the database on every message, so a dropped message
// only delays convergence until the next write.
type ScheduleEvents struct {
	pool   *redis.Pool
	logger *zap.SugaredLogger
}

func NewScheduleEvents(pool *redis.Pool, logger *zap.SugaredLogger) *ScheduleEvents {
	return &ScheduleEvents{pool: pool, logger: logger}
}

func (s *ScheduleEvents) Publish(ctx context.Context, change *model.ScheduleChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}

	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Do("PUBLISH", scheduleChannelPrefix+change.EventID, payload); err != nil {
		return fmt.Errorf("PUBLISH: %w", err)
	}

	return nil
}

// Subscribe delivers changes for one event until ctx is done. The returned
// channel closes on cancellation or on a subscription error.
func (s *ScheduleEvents) Subscribe(ctx context.Context, eventID string) (<-chan *model.ScheduleChange, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}

	psc := redis.PubSubConn{Conn: conn}
	if err := psc.Subscribe(scheduleChannelPrefix + eventID); err != nil {
		conn.Close()
		return nil, fmt.Errorf("SUBSCRIBE: %w", err)
	}

	out := make(chan *model.ScheduleChange)

	go func() {
		<-ctx.Done()
		psc.Close()
	}()

	go func() {
		defer close(out)
		for {
			switch msg := psc.Receive().(type) {
			case redis.Message:
				change := &model.ScheduleChange{}
				if err := json.Unmarshal(msg.Data, change); err != nil {
					s.logger.Errorw("failed to decode schedule change",
						"event_id", eventID, "err", err)
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			case error:
				if ctx.Err() == nil {
					s.logger.Errorw("schedule subscription closed",
						"event_id", eventID, "err", msg)
				}
				return
			}
		}
	}()

	return out, nil
}
