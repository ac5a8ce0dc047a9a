package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hminw18/timecheck-sub000/internal/business/availability"
	"github.com/hminw18/timecheck-sub000/internal/model"
)

func (a *Api) getAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	event, ok := r.Context().Value(contextKeyEvent).(*model.Event)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveEvent)
		return
	}

	includeIfNeeded := r.URL.Query().Get("if_needed") == "true"

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			a.badRequestResponse(w, r, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}

	snapshot, err := a.availability.BuildSnapshot(r.Context(), event.ID)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	resp := &struct {
		Group     map[string]*model.GroupSlot `json:"group"`
		BestTimes []model.TimeRange           `json:"best_times"`
	}{
		Group:     make(map[string]*model.GroupSlot, len(snapshot.Group)),
		BestTimes: availability.BestTimes(&event.EventCreate, snapshot.Group, includeIfNeeded, limit),
	}
	for id, slot := range snapshot.Group {
		resp.Group[string(id)] = slot
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

// streamAvailabilityHandler pushes aggregation snapshots over
// server-sent events: one on connect, then one per schedule change, until
// the client goes away.
func (a *Api) streamAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	event, ok := r.Context().Value(contextKeyEvent).(*model.Event)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveEvent)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		a.serverErrorResponse(w, r, fmt.Errorf("streaming unsupported"))
		return
	}

	snapshots, err := a.watcher.Watch(r.Context(), event.ID)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for snapshot := range snapshots {
		resp, err := mapToSnapshotResp(snapshot)
		if err != nil {
			a.logger.Errorw("failed to map snapshot", "event_id", event.ID, "err", err)
			continue
		}

		if err := writeSSE(w, resp); err != nil {
			// Client gone; the watcher shuts down with the request context.
			return
		}
		flusher.Flush()
	}
}

func writeSSE(w http.ResponseWriter, data interface{}) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "data: %s\n\n", js)
	return err
}
