package linkedin

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/guarzo/linkedinapi/common/model"
)

// This file focuses on the people endpoint and the field mapping.

// DefaultSubPermissions is the field selector used when the caller sets no
// custom one. It asks for almost everything the member profile exposes, so
// the cached fields are populated whatever the application needs later.
const DefaultSubPermissions = "id,first-name,last-name,maiden-name," +
	"email-address,headline,industry,positions,picture-url," +
	"public-profile-url,location,summary"

// GetProfile calls /v1/people/~:(<fields>) and maps the response to the
// small cached Profile. The returned value is complete or the call errors;
// there is no partial profile.
func (s *service) GetProfile(ctx context.Context, token *oauth2.Token, subPermissions string) (*model.Profile, error) {
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("no token provided")
	}
	if subPermissions == "" {
		subPermissions = DefaultSubPermissions
	}

	endpoint := fmt.Sprintf("people/~:(%s)", subPermissions)
	var person model.PersonResponse
	if err := s.restClient.GetJSON(ctx, endpoint, &person, token, nil); err != nil {
		return nil, err
	}

	profile := buildProfile(&person)
	return &profile, nil
}

// buildProfile flattens LinkedIn's person shape into the cached fields.
func buildProfile(person *model.PersonResponse) model.Profile {
	title, company := currentPosition(person.Positions)
	if title == "" {
		// members without a listed position still usually have a headline
		title = person.Headline
	}
	return model.Profile{
		Title:        title,
		CompanyName:  company,
		EmailAddress: person.EmailAddress,
		Photo:        person.PictureURL,
		Industry:     person.Industry,
	}
}

// currentPosition picks the member's current job, falling back to the
// first listed one.
func currentPosition(positions model.Positions) (title, company string) {
	for _, p := range positions.Values {
		if p.IsCurrent {
			return p.Title, p.Company.Name
		}
	}
	if len(positions.Values) > 0 {
		first := positions.Values[0]
		return first.Title, first.Company.Name
	}
	return "", ""
}
