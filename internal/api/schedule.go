package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hminw18/timecheck-sub000/internal/business/schedule"
	"github.com/hminw18/timecheck-sub000/internal/model"
	"github.com/hminw18/timecheck-sub000/internal/pkg/grid"
)

func (a *Api) getScheduleHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	event, ok := r.Context().Value(contextKeyEvent).(*model.Event)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveEvent)
		return
	}

	p, err := a.schedules.GetParticipantSchedule(r.Context(), event.ID, userID)
	if err != nil {
		if errors.Is(err, model.ErrNoRecord) {
			p = &model.Participant{Schedule: model.NewUserSchedule()}
		} else {
			a.serverErrorResponse(w, r, err)
			return
		}
	}

	if err := a.writeJSON(w, http.StatusOK, mapToScheduleResp(p), nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) saveScheduleHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	event, ok := r.Context().Value(contextKeyEvent).(*model.Event)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveEvent)
		return
	}

	req := &struct {
		Unavailable []string `json:"unavailable"`
		IfNeeded    []string `json:"if_needed"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	err := a.schedules.SaveManual(r.Context(), event.ID, userID,
		slotSetFromStrings(req.Unavailable), slotSetFromStrings(req.IfNeeded))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPersistenceConflict):
			a.conflictResponse(w, r)
		default:
			a.serverErrorResponse(w, r, err)
		}
		return
	}

	a.respondWithSchedule(w, r, event.ID, userID)
}

// dragScheduleHandler replays a pointer sequence against the caller's
// manual selection and saves the outcome. The client sends raw down/move/up
// events; the rectangle semantics live server-side so every surface edits
// identically.
func (a *Api) dragScheduleHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	event, ok := r.Context().Value(contextKeyEvent).(*model.Event)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveEvent)
		return
	}

	req := &struct {
		Target string `json:"target"`
		Events []struct {
			Kind    string `json:"kind"`
			Column  string `json:"column"`
			Minutes int    `json:"minutes"`
		} `json:"events"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	if req.Target != "unavailable" && req.Target != "if_needed" {
		a.badRequestResponse(w, r, errors.New("target must be unavailable or if_needed"))
		return
	}

	p, err := a.schedules.GetParticipantSchedule(r.Context(), event.ID, userID)
	if err != nil {
		if errors.Is(err, model.ErrNoRecord) {
			p = &model.Participant{Schedule: model.NewUserSchedule()}
		} else {
			a.serverErrorResponse(w, r, err)
			return
		}
	}

	layers := schedule.LayersFromSchedule(p.Schedule)
	target, opposite := layers.ManualUnavailable, layers.ManualIfNeeded
	if req.Target == "if_needed" {
		target, opposite = layers.ManualIfNeeded, layers.ManualUnavailable
	}

	cache := grid.ForEvent(&event.EventCreate)
	sel := grid.NewSelection(cache, target)

	for _, ev := range req.Events {
		kind, err := pointerKind(ev.Kind)
		if err != nil {
			a.badRequestResponse(w, r, err)
			return
		}

		cell, ok := cache.Cell(model.MakeSlotID(ev.Column, ev.Minutes))
		if !ok {
			// Off-grid coordinates are part of normal drag traffic.
			cell = grid.Cell{Col: -1, Row: -1}
		}

		committed := sel.Handle(grid.PointerEvent{Kind: kind, Cell: cell})

		// A slot added to one manual set leaves the other; the newest
		// edit wins the tie in either direction.
		if sel.Mode() == grid.ModeAdd {
			for _, id := range committed {
				opposite.Remove(id)
			}
		}
	}

	err = a.schedules.SaveManual(r.Context(), event.ID, userID,
		layers.ManualUnavailable, layers.ManualIfNeeded)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPersistenceConflict):
			a.conflictResponse(w, r)
		default:
			a.serverErrorResponse(w, r, err)
		}
		return
	}

	a.respondWithSchedule(w, r, event.ID, userID)
}

func (a *Api) getFixedScheduleHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	fixed, err := a.schedules.GetFixedSchedule(r.Context(), userID)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	resp := &struct {
		Slots []string `json:"slots"`
	}{
		Slots: stringsFromSlotSet(fixed.Slots),
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) saveFixedScheduleHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	req := &struct {
		Slots []string `json:"slots"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	if err := a.schedules.SaveFixedSchedule(r.Context(), userID, slotSetFromStrings(req.Slots)); err != nil {
		switch {
		case errors.Is(err, model.ErrMalformedEvent):
			a.badRequestResponse(w, r, errors.New("slots must be weekday half-hour ids like Mon-09:00"))
		default:
			a.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (a *Api) respondWithSchedule(w http.ResponseWriter, r *http.Request, eventID string, userID int64) {
	p, err := a.schedules.GetParticipantSchedule(r.Context(), eventID, userID)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, mapToScheduleResp(p), nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func pointerKind(kind string) (grid.PointerKind, error) {
	switch kind {
	case "down":
		return grid.PointerDown, nil
	case "move":
		return grid.PointerMove, nil
	case "up":
		return grid.PointerUp, nil
	default:
		return 0, fmt.Errorf("unknown pointer kind %q", kind)
	}
}
