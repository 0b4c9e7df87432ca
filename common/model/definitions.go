package model

import "encoding/json"

// If you want a helper for JSON unmarshal:
func JSONUnmarshal(data []byte, out interface{}) error {
	return json.Unmarshal(data, out)
}

// ----------------------------------------------------------------------
// LinkedIn REST data structures (v1 people API, format=json)
// ----------------------------------------------------------------------

// Profile is the small set of member fields the helper caches after a
// successful login. Populated atomically: callers either see all fields
// from one fetch or none at all.
type Profile struct {
	Title        string `json:"title"`
	CompanyName  string `json:"companyName"`
	EmailAddress string `json:"emailAddress"`
	Photo        string `json:"photo"`
	Industry     string `json:"industry"`
}

// IsZero reports whether no profile fetch has populated p.
func (p Profile) IsZero() bool {
	return p == Profile{}
}

// PersonResponse is the shape LinkedIn returns from
// /v1/people/~:(<fields>)?format=json.
type PersonResponse struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Headline         string    `json:"headline"`
	EmailAddress     string    `json:"emailAddress"`
	Industry         string    `json:"industry"`
	PictureURL       string    `json:"pictureUrl"`
	PublicProfileURL string    `json:"publicProfileUrl"`
	Summary          string    `json:"summary"`
	Positions        Positions `json:"positions"`
}

// Positions is LinkedIn's paged collection wrapper for a member's jobs.
type Positions struct {
	Total  int        `json:"_total"`
	Values []Position `json:"values"`
}

// Position is a single entry of the member's work history.
type Position struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Summary   string  `json:"summary"`
	IsCurrent bool    `json:"isCurrent"`
	Company   Company `json:"company"`
}

// Company as embedded in a Position.
type Company struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Type     string `json:"type"`
}

// ProviderErrorResponse is LinkedIn's error payload shape, returned with
// non-2xx statuses from both the token and the people endpoints.
type ProviderErrorResponse struct {
	ErrorCode        int    `json:"errorCode"`
	Message          string `json:"message"`
	RequestID        string `json:"requestId"`
	Status           int    `json:"status"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
