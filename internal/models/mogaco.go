package models

import "time"

// Mogaco statuses
const (
	MogacoStatusRecruiting = "recruiting"
	MogacoStatusComplete   = "complete"
)

// Mogaco is a scheduled study meetup posted inside a group
type Mogaco struct {
	ID            int64     `json:"id"`
	GroupID       int64     `json:"groupId"`
	MemberID      int64     `json:"memberId"`
	Title         string    `json:"title"`
	Contents      string    `json:"contents"`
	Date          time.Time `json:"date"`
	MaxHumanCount int       `json:"maxHumanCount"`
	Address       string    `json:"address"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// MogacoSummary is the calendar view of a mogaco
type MogacoSummary struct {
	ID    int64     `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

// Summary reshapes the mogaco for calendar listings
func (m *Mogaco) Summary() MogacoSummary {
	return MogacoSummary{ID: m.ID, Title: m.Title, Date: m.Date}
}

// CreateMogacoRequest is the body of a mogaco creation request
type CreateMogacoRequest struct {
	GroupID       int64     `json:"groupId"`
	Title         string    `json:"title"`
	Contents      string    `json:"contents"`
	Date          time.Time `json:"date"`
	MaxHumanCount int       `json:"maxHumanCount"`
	Address       string    `json:"address"`
}
