package auth

import (
	"context"
	"errors"
)

// ErrPresenterCancelled is what a WebPresenter returns when the user
// dismisses the surface before any redirect was intercepted.
var ErrPresenterCancelled = errors.New("user cancelled web authorization")

// PresentRequest tells the web surface what to show.
type PresentRequest struct {
	// AuthorizationURL is the provider page to load.
	AuthorizationURL string
	// RedirectURL is the registered redirect; the presenter intercepts
	// the first navigation to it instead of loading it.
	RedirectURL string
	// CancelButtonText labels the surface's cancel control.
	CancelButtonText string
	// ShowActivityIndicator asks the surface to display a loading
	// indicator during the web round trip.
	ShowActivityIndicator bool
}

// WebPresenter is the UI-surface collaborator: anything able to load the
// authorization URL and report back the intercepted redirect. Typical
// implementations open the system browser with a loopback listener, or
// drive an embedded webview.
//
// Present blocks until one of: the redirect to RedirectURL is intercepted
// (returned verbatim, query string included), the user cancels
// (ErrPresenterCancelled), or ctx is done.
type WebPresenter interface {
	Present(ctx context.Context, req PresentRequest) (redirect string, err error)
}
