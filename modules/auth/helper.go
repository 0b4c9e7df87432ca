package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/guarzo/linkedinapi/common"
	"github.com/guarzo/linkedinapi/common/model"
	"github.com/guarzo/linkedinapi/logger"
	"github.com/guarzo/linkedinapi/modules/linkedin"
)

const logSender = "authhelper"

// Defaults for the configuration properties.
const (
	DefaultCancelButtonText = "Close"
	// DefaultLoginTimeout bounds the whole present-to-redirect wait so an
	// abandoned web surface cannot hang a flow forever.
	DefaultLoginTimeout = 60 * time.Second
)

// AuthHelper runs the LinkedIn web login flow: present the authorization
// page, intercept the redirect, hand the code to the caller, then exchange
// it for a token and fetch the member's profile, caching both in memory
// and in the secure store.
//
// Construct one per login manager with New; instances are independent, so
// tests (or multi-account apps) can hold several at once.
type AuthHelper struct {
	// CancelButtonText labels the presenter's cancel control.
	CancelButtonText string
	// ShowActivityIndicator asks the presenter to display a loading
	// indicator during the web round trip.
	ShowActivityIndicator bool
	// CustomSubPermissions overrides the field-selection string used for
	// the profile fetch. Empty means linkedin.DefaultSubPermissions.
	CustomSubPermissions string
	// Timeout bounds one whole login attempt. Zero means
	// DefaultLoginTimeout.
	Timeout time.Duration

	baseCfg    *common.Config
	store      common.SecureStore
	cache      common.CacheRepository
	httpc      common.HttpClient
	newService func(cfg *common.Config) linkedin.Service

	mu       sync.Mutex
	inFlight bool
	loaded   bool

	sess session
}

// Option customizes a helper's collaborators.
type Option func(*AuthHelper)

// WithHTTPClient replaces the HTTP client used for API calls.
func WithHTTPClient(hc common.HttpClient) Option {
	return func(h *AuthHelper) { h.httpc = hc }
}

// WithCache replaces the response cache.
func WithCache(cache common.CacheRepository) Option {
	return func(h *AuthHelper) { h.cache = cache }
}

// WithServiceFactory replaces how the per-attempt LinkedIn service is
// built. Mainly useful for tests and custom transports.
func WithServiceFactory(factory func(cfg *common.Config) linkedin.Service) Option {
	return func(h *AuthHelper) { h.newService = factory }
}

// New constructs an AuthHelper. cfg supplies the client secret and
// tunables (it may be LoadConfig's result); a nil store keeps credentials
// in memory only.
func New(cfg *common.Config, store common.SecureStore, opts ...Option) *AuthHelper {
	if cfg == nil {
		cfg = &common.Config{}
	}
	if store == nil {
		store = common.NewMemorySecureStore()
	}
	h := &AuthHelper{
		CancelButtonText:      DefaultCancelButtonText,
		ShowActivityIndicator: true,
		Timeout:               cfg.LoginTimeout,
		baseCfg:               cfg,
		store:                 store,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.cache == nil {
		h.cache = common.NewCacheStore()
	}
	if h.httpc == nil {
		userAgent := cfg.UserAgent
		if userAgent == "" {
			userAgent = "linkedinapi"
		}
		h.httpc = common.NewLinkedInHttpClient(userAgent, &http.Client{}, cfg.RequestTimeout)
	}
	if h.newService == nil {
		h.newService = func(flowCfg *common.Config) linkedin.Service {
			rest := linkedin.NewRestClient(linkedin.APIBaseURL, h.httpc, h.cache)
			return linkedin.NewService(flowCfg, rest, &http.Client{Timeout: flowCfg.RequestTimeout})
		}
	}
	return h
}

// RequestAuthorization starts one login attempt.
//
// clientID and redirectURL are the identifiers issued on the LinkedIn
// developer portal and must be non-empty: an empty one fails synchronously
// with KindConfiguration before any network or UI activity. permissions
// may be empty (linkedin.DefaultPermissions is used) and state may be
// empty (a fresh random nonce is generated for the attempt).
//
// Exactly one of onCode/onFailure fires per call, never both, never
// twice. onCode receives the authorization code as soon as the redirect
// validates; the token exchange and profile fetch then run best-effort in
// the background and their failures are logged, not called back. A user
// dismissing the surface always reaches onFailure with KindUserCancelled.
//
// Overlapping calls are rejected: while an attempt is in flight (up to and
// including its background token/profile population) a second call fails
// with KindConcurrency and leaves the first attempt untouched.
func (h *AuthHelper) RequestAuthorization(ctx context.Context, presenter WebPresenter, clientID, redirectURL, permissions, state string,
	onCode func(code string), onFailure func(err error)) {
	dispatch := newResultDispatcher(onCode, onFailure)

	if presenter == nil {
		dispatch.failure(newAuthError(KindConfiguration, "presenter can not be nil"))
		return
	}
	if clientID == "" {
		dispatch.failure(newAuthError(KindConfiguration, "clientId can not be empty"))
		return
	}
	if redirectURL == "" {
		dispatch.failure(newAuthError(KindConfiguration, "redirectUrl can not be empty"))
		return
	}

	h.mu.Lock()
	if h.inFlight {
		h.mu.Unlock()
		dispatch.failure(newAuthError(KindConcurrency, "another authorization attempt is already in flight"))
		return
	}
	h.inFlight = true
	h.mu.Unlock()

	if state == "" {
		nonce, err := GenerateState()
		if err != nil {
			h.endFlight()
			dispatch.failure(wrapAuthError(KindConfiguration, "failed to generate state nonce", err))
			return
		}
		state = nonce
	}

	flowID := uuid.NewString()
	go h.run(ctx, presenter, h.flowConfig(clientID, redirectURL, permissions), state, flowID, dispatch)
}

// run drives one attempt on its own goroutine.
func (h *AuthHelper) run(ctx context.Context, presenter WebPresenter, cfg *common.Config, state, flowID string, dispatch *resultDispatcher) {
	defer h.endFlight()

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultLoginTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	svc := h.newService(cfg)
	authURL := svc.AuthCodeURL(state)

	logger.LoginAttemptLog(logSender, flowID, "present", nil)
	redirect, err := presenter.Present(ctx, PresentRequest{
		AuthorizationURL:      authURL,
		RedirectURL:           cfg.RedirectURL,
		CancelButtonText:      h.CancelButtonText,
		ShowActivityIndicator: h.ShowActivityIndicator,
	})
	if err != nil {
		authErr := presentFailure(err)
		logger.LoginAttemptLog(logSender, flowID, "present", authErr)
		dispatch.failure(authErr)
		return
	}

	code, authErr := parseRedirect(redirect, state)
	if authErr != nil {
		logger.LoginAttemptLog(logSender, flowID, "redirect", authErr)
		dispatch.failure(authErr)
		return
	}

	logger.LoginAttemptLog(logSender, flowID, "code", nil)
	dispatch.success(code)

	// The code callback already fired; everything below is best-effort
	// and must never surface as a second callback.
	h.completeSession(ctx, svc, code, flowID)
}

// presentFailure maps a presenter error to the failure kinds.
func presentFailure(err error) *AuthError {
	switch {
	case errors.Is(err, ErrPresenterCancelled):
		return wrapAuthError(KindUserCancelled, "user dismissed the authorization page", err)
	case errors.Is(err, context.DeadlineExceeded):
		return wrapAuthError(KindNetwork, "authorization timed out", err)
	default:
		return wrapAuthError(KindNetwork, "failed to load the authorization page", err)
	}
}

// Redirect error codes LinkedIn sends when the member backs out on the
// provider's own page.
var cancelledErrorCodes = map[string]bool{
	"user_cancelled_login":     true,
	"user_cancelled_authorize": true,
	"access_denied":            true,
}

// parseRedirect validates the intercepted redirect and extracts the
// authorization code. The state check runs before anything else: a
// mismatch is a security failure, never a silent success.
func parseRedirect(redirect, wantState string) (string, *AuthError) {
	u, err := url.Parse(redirect)
	if err != nil {
		return "", wrapAuthError(KindProvider, "malformed redirect", err)
	}
	q := u.Query()

	if errCode := q.Get("error"); errCode != "" {
		if cancelledErrorCodes[errCode] {
			return "", newAuthError(KindUserCancelled, "user denied the authorization request")
		}
		authErr := newAuthError(KindProvider, "provider rejected the authorization request")
		authErr.Provider = &model.ProviderErrorResponse{
			Error:            errCode,
			ErrorDescription: q.Get("error_description"),
		}
		return "", authErr
	}

	gotState := q.Get("state")
	if subtle.ConstantTimeCompare([]byte(gotState), []byte(wantState)) != 1 {
		return "", newAuthError(KindStateMismatch, "redirect state does not match the one sent")
	}

	code := q.Get("code")
	if code == "" {
		return "", newAuthError(KindProvider, "redirect carried no authorization code")
	}
	return code, nil
}

// completeSession exchanges the code and fetches the profile, populating
// the in-memory session and the secure store.
func (h *AuthHelper) completeSession(ctx context.Context, svc linkedin.Service, code, flowID string) {
	token, err := svc.ExchangeCode(ctx, code)
	if err != nil {
		logger.LoginAttemptLog(logSender, flowID, "exchange", err)
		return
	}

	// a fresh login supersedes whatever the store held
	h.mu.Lock()
	h.loaded = true
	h.mu.Unlock()
	h.sess.setToken(token)
	h.persistToken(token)
	logger.LoginAttemptLog(logSender, flowID, "exchange", nil)

	profile, err := svc.GetProfile(ctx, token, h.CustomSubPermissions)
	if err != nil {
		// decode LinkedIn's error payload into the log line when there is one
		logger.LoginAttemptLog(logSender, flowID, "profile", providerAuthError("profile fetch failed", err))
		return
	}
	h.sess.setProfile(*profile)
	h.persistProfile(*profile)
	logger.LoginAttemptLog(logSender, flowID, "profile", nil)
}

func (h *AuthHelper) persistToken(token *oauth2.Token) {
	raw, err := json.Marshal(token)
	if err != nil {
		logger.Error(logSender, "failed to encode token for the secure store: %v", err)
		return
	}
	if err := h.store.Set(common.StoreKeyAccessToken, string(raw)); err != nil {
		logger.Error(logSender, "failed to persist token: %v", err)
	}
}

func (h *AuthHelper) persistProfile(profile model.Profile) {
	raw, err := json.Marshal(profile)
	if err != nil {
		logger.Error(logSender, "failed to encode profile for the secure store: %v", err)
		return
	}
	if err := h.store.Set(common.StoreKeyProfile, string(raw)); err != nil {
		logger.Error(logSender, "failed to persist profile: %v", err)
	}
}

func (h *AuthHelper) endFlight() {
	h.mu.Lock()
	h.inFlight = false
	h.mu.Unlock()
}

// flowConfig merges the per-call identifiers over the base configuration.
func (h *AuthHelper) flowConfig(clientID, redirectURL, permissions string) *common.Config {
	cfg := *h.baseCfg
	cfg.ClientID = clientID
	cfg.RedirectURL = redirectURL
	if permissions != "" {
		cfg.Permissions = permissions
	}
	return &cfg
}

// ensureLoaded lazily reloads the session from the secure store, so a
// token persisted by a previous process is visible on first read.
func (h *AuthHelper) ensureLoaded() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.loaded {
		return
	}
	h.loaded = true

	raw, found, err := h.store.Get(common.StoreKeyAccessToken)
	if err != nil {
		logger.Error(logSender, "failed to read token from secure store: %v", err)
		return
	}
	if found {
		var token oauth2.Token
		if err := json.Unmarshal([]byte(raw), &token); err != nil {
			logger.Error(logSender, "failed to decode stored token: %v", err)
		} else {
			h.sess.setToken(&token)
		}
	}

	raw, found, err = h.store.Get(common.StoreKeyProfile)
	if err != nil {
		logger.Error(logSender, "failed to read profile from secure store: %v", err)
		return
	}
	if found {
		var profile model.Profile
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			logger.Error(logSender, "failed to decode stored profile: %v", err)
		} else {
			h.sess.setProfile(profile)
		}
	}
}

// AccessToken returns the cached access token, or "" if the member never
// authenticated or logged out. Pure read: it never contacts LinkedIn.
func (h *AuthHelper) AccessToken() string {
	h.ensureLoaded()
	return h.sess.accessToken()
}

// Profile returns the cached member profile. All fields are empty until a
// login's profile fetch completed, and again after Logout.
func (h *AuthHelper) Profile() model.Profile {
	h.ensureLoaded()
	return h.sess.profileSnapshot()
}

// Title is the member's job title.
func (h *AuthHelper) Title() string { return h.Profile().Title }

// CompanyName is the member's company name.
func (h *AuthHelper) CompanyName() string { return h.Profile().CompanyName }

// EmailAddress is the member's email address.
func (h *AuthHelper) EmailAddress() string { return h.Profile().EmailAddress }

// Photo is the member's photo URL.
func (h *AuthHelper) Photo() string { return h.Profile().Photo }

// Industry is the member's industry name.
func (h *AuthHelper) Industry() string { return h.Profile().Industry }

// Logout clears the in-memory session and deletes all persisted
// credential material. Idempotent: logging out twice is a no-op, never an
// error. Store deletion failures are logged and never block clearing the
// session.
func (h *AuthHelper) Logout() {
	h.mu.Lock()
	h.loaded = true // the cleared state is authoritative, skip any reload
	h.mu.Unlock()
	h.sess.clear()

	if err := h.store.Delete(common.StoreKeyAccessToken); err != nil {
		logger.Error(logSender, "failed to delete token from secure store: %v", err)
	}
	if err := h.store.Delete(common.StoreKeyProfile); err != nil {
		logger.Error(logSender, "failed to delete profile from secure store: %v", err)
	}
}
