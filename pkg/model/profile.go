package model

import (
	"encoding/json"
	"time"
)

// Profile is returned by GET /user/profile.
type Profile struct {
	User        ProfileUser `json:"user"`
	Preferences []Category  `json:"preferences"`
}

// ProfileUser is the user block of a profile, with its creation date.
type ProfileUser struct {
	User
	CreatedAt time.Time `json:"createdAt"`
}

// UnmarshalJSON keeps the embedded User's id handling and reads createdAt.
func (p *ProfileUser) UnmarshalJSON(data []byte) error {
	if err := p.User.UnmarshalJSON(data); err != nil {
		return err
	}
	var extra struct {
		CreatedAt time.Time `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &extra); err == nil {
		p.CreatedAt = extra.CreatedAt
	}
	return nil
}

// PreferenceIDs returns the ids of the preferred categories.
func (p *Profile) PreferenceIDs() []int {
	ids := make([]int, 0, len(p.Preferences))
	for _, c := range p.Preferences {
		ids = append(ids, c.ID)
	}
	return ids
}

// UpdateProfileRequest is the body of PUT /user/profile.
type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// Preferences is returned by GET /users/me/preferences.
type Preferences struct {
	CategoryIDs []int `json:"preferences"`
}

// Has reports whether the category id is selected.
func (p *Preferences) Has(id int) bool {
	for _, c := range p.CategoryIDs {
		if c == id {
			return true
		}
	}
	return false
}

// UpdatePreferencesRequest is the body of PUT /users/me/preferences.
type UpdatePreferencesRequest struct {
	UserID      string `json:"userId"`
	CategoryIDs []int  `json:"categoryIds"`
}

// UpdatePreferencesResponse is returned by PUT /users/me/preferences.
type UpdatePreferencesResponse struct {
	Success            bool `json:"success"`
	UpdatedPreferences int  `json:"updatedPreferences"`
}
