package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/hminw18/timecheck-sub000/internal/model"
	"github.com/hminw18/timecheck-sub000/internal/pkg/validator"
)

var errCantRetrieveEvent = errors.New("can't retrieve event from context")

func (a *Api) createEventHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	req := &struct {
		Title         string   `json:"title"`
		EventType     string   `json:"type"`
		SelectedDates []string `json:"selected_dates"`
		SelectedDays  []string `json:"selected_days"`
		StartMinutes  int      `json:"start_minutes"`
		EndMinutes    int      `json:"end_minutes"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	info := &model.EventCreate{
		Title:         req.Title,
		EventType:     model.EventType(req.EventType),
		SelectedDates: req.SelectedDates,
		SelectedDays:  req.SelectedDays,
		StartMinutes:  req.StartMinutes,
		EndMinutes:    req.EndMinutes,
		CreatorID:     userID,
	}

	v := validator.New()
	validateEventCreate(v, info)
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	event, err := a.events.CreateEvent(r.Context(), info)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	resp, err := mapToEventResp(event)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusCreated, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) listEventsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	events, err := a.events.GetEventsByCreator(r.Context(), userID)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	resp, err := mapSlice(events, mapToEventResp)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) getEventHandler(w http.ResponseWriter, r *http.Request) {
	event, ok := r.Context().Value(contextKeyEvent).(*model.Event)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveEvent)
		return
	}

	snapshot, err := a.availability.BuildSnapshot(r.Context(), event.ID)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	resp, err := mapToSnapshotResp(snapshot)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) deleteEventHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := a.events.DeleteEvent(r.Context(), event.ID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrNoRecord):
			a.notFoundResponse(w, r)
		default:
			a.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

// joinEventHandler registers the caller as a participant: an empty manual
// save creates the document, then connected calendars fold in.
func (a *Api) joinEventHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := a.schedules.SaveManual(r.Context(), event.ID, userID, model.NewSlotSet(), model.NewSlotSet()); err != nil {
		if !errors.Is(err, model.ErrPersistenceConflict) {
			a.serverErrorResponse(w, r, err)
			return
		}
		// Already joined and being written concurrently; fall through.
	}

	if err := a.syncs.SyncUserEvent(r.Context(), userID, event.ID); err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func validateEventCreate(v *validator.Validator, info *model.EventCreate) {
	v.Check(info.Title != "", "title", "must be provided")
	v.Check(len(info.Title) <= 200, "title", "must not be more than 200 characters")

	switch info.EventType {
	case model.EventTypeDate:
		v.Check(len(info.SelectedDates) > 0, "selected_dates", "must not be empty")
		v.Check(len(info.SelectedDays) == 0, "selected_days", "must be empty for date events")
		for _, d := range info.SelectedDates {
			if _, err := time.Parse(model.DateColumnLayout, d); err != nil {
				v.AddError("selected_dates", "must contain YYYY-MM-DD dates")
				break
			}
		}
	case model.EventTypeDay:
		v.Check(len(info.SelectedDays) > 0, "selected_days", "must not be empty")
		v.Check(len(info.SelectedDates) == 0, "selected_dates", "must be empty for day events")
		for _, d := range info.SelectedDays {
			if !model.IsWeekdayToken(d) {
				v.AddError("selected_days", "must contain weekday tokens Mon..Sun")
				break
			}
		}
	default:
		v.AddError("type", "must be date or day")
	}

	v.Check(info.StartMinutes >= 0, "start_minutes", "must not be negative")
	v.Check(info.EndMinutes <= model.MinutesPerDay, "end_minutes", "must not exceed 1440")
	v.Check(info.StartMinutes < info.EndMinutes, "start_minutes", "must precede end_minutes")
	v.Check(info.StartMinutes%model.SlotMinutes == 0, "start_minutes", "must align to 30 minutes")
	v.Check(info.EndMinutes%model.SlotMinutes == 0, "end_minutes", "must align to 30 minutes")
}
