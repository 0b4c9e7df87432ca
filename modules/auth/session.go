package auth

import (
	"sync"

	"golang.org/x/oauth2"

	"github.com/guarzo/linkedinapi/common/model"
)

// session is the helper's in-memory view of the logged-in member: the
// access token plus the cached profile fields. The profile is swapped
// wholesale, so readers only ever observe all-empty or the complete
// result of one fetch.
type session struct {
	mu      sync.RWMutex
	token   *oauth2.Token
	profile model.Profile
}

func (s *session) accessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

func (s *session) setToken(token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *session) setProfile(profile model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = profile
}

func (s *session) profileSnapshot() model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
	s.profile = model.Profile{}
}
