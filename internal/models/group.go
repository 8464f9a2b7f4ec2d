package models

import "time"

// Group is a study group owned by the member who created it
type Group struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	GroupTypeID  int64     `json:"groupTypeId"`
	GroupOwnerID int64     `json:"groupOwnerId"`
	MembersCount int       `json:"membersCount"`
	AccessCode   string    `json:"accessCode,omitempty"` // only set for members of the group
	CreatedAt    time.Time `json:"createdAt"`
}

// GroupMembership is the join row between a group and a member
type GroupMembership struct {
	GroupID  int64     `json:"groupId"`
	UserID   int64     `json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

// GroupAccessCode is the UUID token that resolves to exactly one group
type GroupAccessCode struct {
	ID         int64     `json:"id"`
	GroupID    int64     `json:"groupId"`
	AccessCode string    `json:"accessCode"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateGroupRequest is the body of a group creation request
type CreateGroupRequest struct {
	Title       string `json:"title"`
	GroupTypeID int64  `json:"groupTypeId"`
}
