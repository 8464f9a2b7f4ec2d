package models

import "time"

// Member is an externally authenticated identity (GitHub account)
type Member struct {
	ID             int64     `json:"id"`
	ProviderID     string    `json:"providerId"`
	SocialType     string    `json:"socialType"`
	Email          string    `json:"email"`
	Nickname       string    `json:"nickname"`
	ProfilePicture string    `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// MemberInformation is the public view of a member
type MemberInformation struct {
	ID             int64  `json:"id"`
	ProviderID     string `json:"providerId"`
	Email          string `json:"email"`
	Nickname       string `json:"nickname"`
	ProfilePicture string `json:"profilePicture"`
}

// Information returns the public view of the member
func (m *Member) Information() MemberInformation {
	return MemberInformation{
		ID:             m.ID,
		ProviderID:     m.ProviderID,
		Email:          m.Email,
		Nickname:       m.Nickname,
		ProfilePicture: m.ProfilePicture,
	}
}
