package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	people "google.golang.org/api/people/v1"

	"github.com/hminw18/timecheck-sub000/internal/config"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

type GoogleInfo struct {
	Name    string
	Email   string
	Picture string
}

type clientSecrets map[string]creds

type creds struct {
	ClientId                string   `json:"client_id"`
	ProjectId               string   `json:"project_id"`
	AuthUri                 string   `json:"auth_uri"`
	TokenUri                string   `json:"token_uri"`
	AuthProviderX509CertUrl string   `json:"auth_provider_x509_cert_url"`
	ClientSecret            string   `json:"client_secret"`
	RedirectUris            []string `json:"redirect_uris"`
}

func loadConfig(scopes ...string) (*oauth2.Config, error) {
	file, err := os.Open(config.ClientSecretPath())
	if err != nil {
		return nil, fmt.Errorf("can't open client secret: %w", err)
	}
	defer file.Close()

	cs := make(clientSecrets)
	if err := json.NewDecoder(file).Decode(&cs); err != nil {
		return nil, fmt.Errorf("can't parse secrets: %w", err)
	}

	secret := cs[config.ClientType()]
	return &oauth2.Config{
		ClientID:     secret.ClientId,
		ClientSecret: secret.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  config.RedirectURL(),
		Scopes:       scopes,
	}, nil
}

func (p *Parser) GetInfoGoogle(ctx context.Context, authCode string) (*GoogleInfo, error) {
	conf, err := loadConfig(people.UserinfoEmailScope, people.UserinfoProfileScope)
	if err != nil {
		return nil, err
	}

	token, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}

	peopleService, err := people.NewService(ctx,
		option.WithScopes(people.UserinfoEmailScope, people.UserinfoProfileScope),
		option.WithTokenSource(conf.TokenSource(ctx, token)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to People API: %w", err)
	}

	resp, err := peopleService.People.
		Get("people/me").
		PersonFields("names,emailAddresses,photos").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to make request for user info: %w", err)
	}

	if resp.HTTPStatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get user info: code: %d", resp.HTTPStatusCode)
	}

	info := &GoogleInfo{}

	for _, n := range resp.Names {
		if n.Metadata.Primary {
			info.Name = n.DisplayName
			break
		}
	}

	for _, e := range resp.EmailAddresses {
		if e.Metadata.Primary {
			info.Email = e.Value
			break
		}
	}

	for _, p := range resp.Photos {
		if p.Metadata.Primary {
			info.Picture = p.Url
			break
		}
	}

	return info, nil
}

// CalendarConfig is the oauth config used both to exchange a calendar
// connect code and to mint token sources from a stored refresh token.
func (p *Parser) CalendarConfig() (*oauth2.Config, error) {
	return loadConfig(calendar.CalendarReadonlyScope)
}

// ExchangeCalendarCode trades an offline-access auth code for its refresh
// token, which the caller stores encrypted.
func (p *Parser) ExchangeCalendarCode(ctx context.Context, authCode string) (string, error) {
	conf, err := p.CalendarConfig()
	if err != nil {
		return "", err
	}

	token, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return "", fmt.Errorf("code exchange: %w", err)
	}

	if token.RefreshToken == "" {
		return "", fmt.Errorf("no refresh token granted")
	}

	return token.RefreshToken, nil
}
