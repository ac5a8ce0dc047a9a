package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hminw18/timecheck-sub000/internal/calendar/apple"
	"github.com/hminw18/timecheck-sub000/internal/model"
)

func (a *Api) getCalendarsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	conns, err := a.syncs.GetConnections(r.Context(), userID)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	type connectionResp struct {
		Provider string `json:"provider"`
		Account  string `json:"account"`
		Status   string `json:"status"`
	}

	resp := make([]connectionResp, len(conns))
	for i, c := range conns {
		resp[i] = connectionResp{
			Provider: string(c.Provider),
			Account:  c.Account,
			Status:   string(c.Status),
		}
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) connectGoogleCalendarHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	user, ok := r.Context().Value(contextKeyUser).(*model.User)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveUser)
		return
	}

	req := &struct {
		AuthCode string `json:"auth_code"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	refreshToken, err := a.tokenParser.ExchangeCalendarCode(r.Context(), req.AuthCode)
	if err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	if err := a.syncs.Connect(r.Context(), userID, model.ProviderGoogle, refreshToken, user.Email); err != nil {
		switch {
		case errors.Is(err, model.ErrAlreadyExists):
			a.clientErrorResponse(w, r, http.StatusConflict, "google calendar already connected")
		default:
			a.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (a *Api) connectAppleCalendarHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	req := &struct {
		AppleID     string `json:"apple_id"`
		AppPassword string `json:"app_password"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := map[string]string{}
	if req.AppleID == "" {
		v["apple_id"] = "must be provided"
	}
	if req.AppPassword == "" {
		v["app_password"] = "must be provided"
	}
	if len(v) != 0 {
		a.failedValidationResponse(w, r, v)
		return
	}

	credential, err := json.Marshal(apple.Credential{
		AppleID:     req.AppleID,
		AppPassword: req.AppPassword,
	})
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.syncs.Connect(r.Context(), userID, model.ProviderApple, string(credential), req.AppleID); err != nil {
		switch {
		case errors.Is(err, model.ErrAlreadyExists):
			a.clientErrorResponse(w, r, http.StatusConflict, "apple calendar already connected")
		default:
			a.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (a *Api) disconnectCalendarHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	provider := model.CalendarProvider(chi.URLParam(r, "provider"))
	if provider != model.ProviderGoogle && provider != model.ProviderApple {
		a.notFoundResponse(w, r)
		return
	}

	if err := a.syncs.Disconnect(r.Context(), userID, provider); err != nil {
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
