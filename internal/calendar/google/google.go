// Package google fetches busy events from the Google Calendar API.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/hminw18/timecheck-sub000/internal/calendar"
	"github.com/hminw18/timecheck-sub000/internal/model"
)

type oauthParser interface {
	CalendarConfig() (*oauth2.Config, error)
}

type Provider struct {
	oauth oauthParser
}

func NewProvider(oauth oauthParser) *Provider {
	return &Provider{oauth: oauth}
}

// Fetch lists the user's primary calendar within [windowStart, windowEnd)
// with server-side recurrence expansion. The refresh token comes from the
// vault, already decrypted by the caller.
func (p *Provider) Fetch(ctx context.Context, refreshToken string, windowStart, windowEnd time.Time) ([]calendar.RawEvent, error) {
	conf, err := p.oauth.CalendarConfig()
	if err != nil {
		return nil, err
	}

	source := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	service, err := gcal.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("init calendar service: %w", err)
	}

	var res []calendar.RawEvent
	pageToken := ""
	for {
		call := service.Events.List("primary").
			Context(ctx).
			TimeMin(windowStart.Format(time.RFC3339)).
			TimeMax(windowEnd.Format(time.RFC3339)).
			SingleEvents(true).
			MaxResults(2500)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, classifyError(err)
		}

		for _, item := range resp.Items {
			raw, ok := toRawEvent(item)
			if !ok {
				continue
			}
			res = append(res, raw)
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return res, nil
}

func toRawEvent(item *gcal.Event) (calendar.RawEvent, bool) {
	raw := calendar.RawEvent{
		ID:               item.Id,
		Summary:          item.Summary,
		RecurringEventID: item.RecurringEventId,
		Status:           item.Status,
		Transparency:     item.Transparency,
	}

	// All-day events carry Date instead of DateTime and block no slots.
	if item.Start == nil || item.End == nil ||
		item.Start.DateTime == "" || item.End.DateTime == "" {
		return calendar.RawEvent{}, false
	}

	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return calendar.RawEvent{}, false
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return calendar.RawEvent{}, false
	}

	raw.Start = start
	raw.End = end
	return raw, true
}

func classifyError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
			return fmt.Errorf("list events: %w", model.ErrProviderAuthExpired)
		}
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("refresh access token: %w", model.ErrProviderAuthExpired)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("list events: %w", model.ErrProviderUnavailable)
	}

	return fmt.Errorf("list events: %v: %w", err, model.ErrProviderUnavailable)
}
