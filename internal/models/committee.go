package models

import (
	"slices"
	"time"
)

// CommitteeType is the contribution cadence of a committee.
type CommitteeType string

const (
	CommitteeWeekly  CommitteeType = "weekly"
	CommitteeMonthly CommitteeType = "monthly"
	CommitteeYearly  CommitteeType = "yearly"
)

// Valid reports whether t is a known cadence.
func (t CommitteeType) Valid() bool {
	switch t {
	case CommitteeWeekly, CommitteeMonthly, CommitteeYearly:
		return true
	}
	return false
}

// CommitteeStatus is the lifecycle state of a committee.
type CommitteeStatus string

const (
	CommitteePending   CommitteeStatus = "pending"
	CommitteeActive    CommitteeStatus = "active"
	CommitteeCompleted CommitteeStatus = "completed"
)

// Valid reports whether s is a known status.
func (s CommitteeStatus) Valid() bool {
	switch s {
	case CommitteePending, CommitteeActive, CommitteeCompleted:
		return true
	}
	return false
}

// Committee is a rotating-savings pool. Members keeps join order and the
// creator is always the first member.
type Committee struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Type          CommitteeType   `json:"type"`
	GoalAmount    float64         `json:"goalAmount"`
	CurrentAmount float64         `json:"currentAmount"`
	Members       []string        `json:"members"`
	CreatedBy     string          `json:"createdBy"`
	CreatedAt     time.Time       `json:"createdAt"`
	Status        CommitteeStatus `json:"status"`
	NextDrawDate  *time.Time      `json:"nextDrawDate,omitempty"`
}

// HasMember reports whether userID has joined the committee.
func (c Committee) HasMember(userID string) bool {
	return slices.Contains(c.Members, userID)
}

// CommitteeInput holds the creation form fields of a committee.
type CommitteeInput struct {
	Name         string
	Description  string
	Type         CommitteeType
	GoalAmount   float64
	NextDrawDate *time.Time
}

// CommitteePatch lists the mutable fields of a committee. Status is not
// checked against any transition table.
type CommitteePatch struct {
	Name          *string
	Description   *string
	Type          *CommitteeType
	GoalAmount    *float64
	CurrentAmount *float64
	Status        *CommitteeStatus
	NextDrawDate  *time.Time
}

// Apply merges the patch into c.
func (p CommitteePatch) Apply(c *Committee) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.GoalAmount != nil {
		c.GoalAmount = *p.GoalAmount
	}
	if p.CurrentAmount != nil {
		c.CurrentAmount = *p.CurrentAmount
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.NextDrawDate != nil {
		d := *p.NextDrawDate
		c.NextDrawDate = &d
	}
}

// StatusPatch is a shorthand for a patch that only sets the status.
func StatusPatch(s CommitteeStatus) CommitteePatch {
	return CommitteePatch{Status: &s}
}

// Message is a chat line posted in a committee. UserName is a snapshot
// taken when the message was sent.
type Message struct {
	ID          string    `json:"id"`
	CommitteeID string    `json:"committeeId"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

// Winner records one draw. It is never modified after creation.
type Winner struct {
	ID            string    `json:"id"`
	CommitteeID   string    `json:"committeeId"`
	CommitteeName string    `json:"committeeName"`
	UserID        string    `json:"userId"`
	UserName      string    `json:"userName"`
	Amount        float64   `json:"amount"`
	Date          time.Time `json:"date"`
}
