// Package apple fetches events and reminders over CalDAV using an
// app-specific password.
package apple

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	"github.com/hminw18/timecheck-sub000/internal/model"
)

const endpoint = "https://caldav.icloud.com"

// Credential is the vault-stored payload for an Apple connection.
type Credential struct {
	AppleID     string `json:"apple_id"`
	AppPassword string `json:"app_password"`
}

type Provider struct {
	mu    sync.Mutex
	homes map[string][]caldav.Calendar
}

func NewProvider() *Provider {
	return &Provider{homes: make(map[string][]caldav.Calendar)}
}

// Fetch runs VEVENT and VTODO time-range queries against every calendar
// in the account and returns the raw parsed payloads. Calendar discovery
// is cached per account; the cache is dropped on an auth failure so a
// re-connect starts clean.
func (p *Provider) Fetch(ctx context.Context, credential string, windowStart, windowEnd time.Time) ([]*ical.Calendar, error) {
	var cred Credential
	if err := json.Unmarshal([]byte(credential), &cred); err != nil {
		return nil, fmt.Errorf("parse credential: %w", err)
	}

	client, err := caldav.NewClient(
		webdav.HTTPClientWithBasicAuth(http.DefaultClient, cred.AppleID, cred.AppPassword),
		endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init caldav client: %w", err)
	}

	calendars, err := p.findCalendars(ctx, client, cred.AppleID)
	if err != nil {
		return nil, err
	}

	var res []*ical.Calendar
	for _, cal := range calendars {
		for _, comp := range []string{ical.CompEvent, ical.CompToDo} {
			if !supportsComponent(cal, comp) {
				continue
			}

			objects, err := client.QueryCalendar(ctx, cal.Path, timeRangeQuery(comp, windowStart, windowEnd))
			if err != nil {
				p.evict(cred.AppleID)
				return nil, classifyError(err)
			}

			for _, obj := range objects {
				if obj.Data != nil {
					res = append(res, obj.Data)
				}
			}
		}
	}

	return res, nil
}

func (p *Provider) findCalendars(ctx context.Context, client *caldav.Client, account string) ([]caldav.Calendar, error) {
	p.mu.Lock()
	cached, ok := p.homes[account]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, classifyError(err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, classifyError(err)
	}

	calendars, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, classifyError(err)
	}

	p.mu.Lock()
	p.homes[account] = calendars
	p.mu.Unlock()

	return calendars, nil
}

func (p *Provider) evict(account string) {
	p.mu.Lock()
	delete(p.homes, account)
	p.mu.Unlock()
}

func supportsComponent(cal caldav.Calendar, name string) bool {
	if len(cal.SupportedComponentSet) == 0 {
		return true
	}
	for _, c := range cal.SupportedComponentSet {
		if c == name {
			return true
		}
	}
	return false
}

func timeRangeQuery(comp string, start, end time.Time) *caldav.CalendarQuery {
	return &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: ical.CompCalendar,
			Comps: []caldav.CalendarCompRequest{{
				Name:     comp,
				AllProps: true,
			}},
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  comp,
				Start: start,
				End:   end,
			}},
		},
	}
}

func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("caldav query: %w", model.ErrProviderUnavailable)
	}

	// The webdav client reports HTTP failures through an unexported error
	// type whose message starts with "<code> <status text>"; the status
	// code survives only there.
	msg := err.Error()
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		if strings.Contains(msg, fmt.Sprintf("%d %s", code, http.StatusText(code))) {
			return fmt.Errorf("caldav query: %w", model.ErrProviderAuthExpired)
		}
	}

	return fmt.Errorf("caldav query: %v: %w", err, model.ErrProviderUnavailable)
}
