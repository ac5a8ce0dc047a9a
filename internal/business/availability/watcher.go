package availability

import (
	"context"

	"go.uber.org/zap"

	"github.com/hminw18/timecheck-sub000/internal/model"
)

type changeSubscriber interface {
	Subscribe(ctx context.Context, eventID string) (<-chan *model.ScheduleChange, error)
}

// Watcher streams full aggregation snapshots for one event: an initial
// snapshot on start, then one per published schedule change. Bursts
// coalesce because a rebuild reads current state; each snapshot reflects
// everything written before it.
type Watcher struct {
	service    *Service
	subscriber changeSubscriber
	logger     *zap.SugaredLogger
}

func NewWatcher(service *Service, subscriber changeSubscriber, logger *zap.SugaredLogger) *Watcher {
	return &Watcher{
		service:    service,
		subscriber: subscriber,
		logger:     logger,
	}
}

// Watch returns a snapshot channel that closes when ctx is done. A failed
// rebuild is logged and skipped; the next change triggers a fresh one.
func (w *Watcher) Watch(ctx context.Context, eventID string) (<-chan *Snapshot, error) {
	changes, err := w.subscriber.Subscribe(ctx, eventID)
	if err != nil {
		return nil, err
	}

	initial, err := w.service.BuildSnapshot(ctx, eventID)
	if err != nil {
		return nil, err
	}

	out := make(chan *Snapshot, 1)
	out <- initial

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}

				snapshot, err := w.service.BuildSnapshot(ctx, eventID)
				if err != nil {
					w.logger.Errorw("failed to rebuild group schedule",
						"event_id", eventID, "err", err)
					continue
				}

				select {
				case out <- snapshot:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
