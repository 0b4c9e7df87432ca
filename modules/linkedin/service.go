package linkedin

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/guarzo/linkedinapi/common"
	"github.com/guarzo/linkedinapi/common/model"
)

// LinkedIn OAuth2 and REST endpoints.
const (
	AuthorizationURL = "https://www.linkedin.com/uas/oauth2/authorization"
	TokenURL         = "https://www.linkedin.com/uas/oauth2/accessToken"
	APIBaseURL       = "https://api.linkedin.com/v1/"
)

// DefaultPermissions is the scope set requested when the caller passes no
// permissions of its own: the broad legacy grant covering profile, email
// and connections.
const DefaultPermissions = "r_fullprofile r_emailaddress r_network"

// Service is the higher-level interface for the LinkedIn login endpoints:
// building the authorization URL, exchanging the code, fetching profiles.
type Service interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	GetProfile(ctx context.Context, token *oauth2.Token, subPermissions string) (*model.Profile, error)
}

// service is the concrete implementation that uses RestClient plus an
// oauth2.Config for the code grant.
type service struct {
	oauthCfg   *oauth2.Config
	restClient RestClient
	// exchangeClient is handed to x/oauth2 for the token POST, so the
	// exchange honors the same transport/timeout as everything else.
	exchangeClient *http.Client
}

// NewService constructs a Service from the application credentials. A nil
// exchangeClient falls back to a plain client with the default request
// timeout.
func NewService(cfg *common.Config, restClient RestClient, exchangeClient *http.Client) Service {
	return NewServiceWithEndpoint(cfg, restClient, exchangeClient, oauth2.Endpoint{
		AuthURL:  AuthorizationURL,
		TokenURL: TokenURL,
	})
}

// NewServiceWithEndpoint is NewService with the OAuth2 endpoints swapped
// out, e.g. for a test server.
func NewServiceWithEndpoint(cfg *common.Config, restClient RestClient, exchangeClient *http.Client, endpoint oauth2.Endpoint) Service {
	if exchangeClient == nil {
		exchangeClient = &http.Client{Timeout: common.DefaultRequestTimeout}
	}
	permissions := cfg.Permissions
	if permissions == "" {
		permissions = DefaultPermissions
	}
	return &service{
		oauthCfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       SplitPermissions(permissions),
			Endpoint:     endpoint,
		},
		restClient:     restClient,
		exchangeClient: exchangeClient,
	}
}

// SplitPermissions splits a space- or comma-delimited permission list into
// individual scopes.
func SplitPermissions(permissions string) []string {
	fields := strings.FieldsFunc(permissions, func(r rune) bool {
		return r == ' ' || r == ','
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// AuthCodeURL builds the provider's authorization URL embedding client_id,
// redirect_uri, scope and state.
func (s *service) AuthCodeURL(state string) string {
	return s.oauthCfg.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for an access token.
func (s *service) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("no authorization code provided")
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.exchangeClient)
	token, err := s.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	return token, nil
}
