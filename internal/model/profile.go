package model

import "time"

// Profile is a registered account.
//
// Accounts are created either with email + password (PasswordHash set) or by
// signing in with GitHub (GitHubID set). An account may carry both once a
// GitHub login matches an existing email.
//
// PasswordHash is tagged json:"-" so it can never leak through an API
// response, even if a handler serialises the whole struct.
type Profile struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	FullName          string    `json:"fullName,omitempty"`
	Bio               string    `json:"bio,omitempty"`
	AvatarURL         string    `json:"avatarUrl,omitempty"`
	CookingExperience string    `json:"cookingExperience,omitempty"`
	PasswordHash      string    `json:"-"`
	GitHubID          *int64    `json:"githubId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Summary returns the public part of the profile shown next to recipes and
// ratings.
func (p Profile) Summary() ProfileSummary {
	return ProfileSummary{
		ID:        p.ID,
		Username:  p.Username,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
	}
}

// ProfileSummary is the author block embedded in recipes and ratings.
type ProfileSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// CookingExperience levels offered at registration.
const (
	ExperienceBeginner     = "beginner"
	ExperienceIntermediate = "intermediate"
	ExperienceExpert       = "expert"
)
