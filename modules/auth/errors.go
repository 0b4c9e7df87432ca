package auth

import (
	"errors"
	"fmt"

	"github.com/guarzo/linkedinapi/common"
	"github.com/guarzo/linkedinapi/common/model"
)

// ErrorKind classifies a login failure so callers can react without
// string matching. KindUserCancelled in particular is not a fault and
// callers will usually skip their error UI for it.
type ErrorKind int

const (
	// KindConfiguration: required identifiers missing, reported
	// synchronously before any network or UI activity.
	KindConfiguration ErrorKind = iota + 1
	// KindUserCancelled: the user dismissed the web surface or denied
	// the authorization request.
	KindUserCancelled
	// KindStateMismatch: the redirect's anti-forgery token did not match
	// the one sent. Treated as a security failure, never as success.
	KindStateMismatch
	// KindNetwork: transient transport failure or flow timeout. The
	// helper performs no automatic retry; callers may call again.
	KindNetwork
	// KindProvider: LinkedIn answered with a non-2xx status, an error
	// redirect or a malformed response.
	KindProvider
	// KindConcurrency: a login attempt was already in flight on this
	// helper instance.
	KindConcurrency
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindUserCancelled:
		return "user_cancelled"
	case KindStateMismatch:
		return "state_mismatch"
	case KindNetwork:
		return "network"
	case KindProvider:
		return "provider"
	case KindConcurrency:
		return "concurrency"
	}
	return "unknown"
}

// AuthError is the failure half of an AuthorizationResult.
type AuthError struct {
	Kind    ErrorKind
	Message string
	Cause   error
	// Provider carries LinkedIn's error payload when one was available.
	Provider *model.ProviderErrorResponse
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// KindOf extracts the ErrorKind from err, or 0 if err is not an AuthError.
func KindOf(err error) ErrorKind {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return 0
}

// IsUserCancelled reports whether err represents the user backing out
// rather than something going wrong.
func IsUserCancelled(err error) bool {
	return KindOf(err) == KindUserCancelled
}

func newAuthError(kind ErrorKind, message string) *AuthError {
	return &AuthError{Kind: kind, Message: message}
}

func wrapAuthError(kind ErrorKind, message string, cause error) *AuthError {
	return &AuthError{Kind: kind, Message: message, Cause: cause}
}

// providerAuthError builds a KindProvider error, decoding LinkedIn's error
// payload out of an HTTPError body when there is one.
func providerAuthError(message string, cause error) *AuthError {
	authErr := wrapAuthError(KindProvider, message, cause)
	var httpErr *common.HTTPError
	if errors.As(cause, &httpErr) && len(httpErr.Body) > 0 {
		payload := &model.ProviderErrorResponse{}
		if err := model.JSONUnmarshal(httpErr.Body, payload); err == nil {
			authErr.Provider = payload
		}
	}
	return authErr
}
