package models

import "time"

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserStatus is the moderation state of a user. An empty status means active.
type UserStatus string

const (
	UserStatusActive UserStatus = "active"
	UserStatusBanned UserStatus = "banned"
)

// User represents a stored user account.
//
// Password is kept as given by the configured password scheme; with the
// default "plain" scheme it is the clear-text password. Not production grade.
type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Password      string     `json:"password"`
	Role          Role       `json:"role"`
	MonthlyIncome float64    `json:"monthlyIncome"`
	Followers     int        `json:"followers"`
	Following     int        `json:"following"`
	CreatedAt     time.Time  `json:"createdAt"`
	Status        UserStatus `json:"status,omitempty"`
	Avatar        string     `json:"avatar,omitempty"`
	Bio           string     `json:"bio,omitempty"`
}

// IsBanned reports whether an admin has banned the user.
func (u User) IsBanned() bool {
	return u.Status == UserStatusBanned
}

// Session returns the password-free projection of u.
func (u User) Session() SessionUser {
	return SessionUser{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		MonthlyIncome: u.MonthlyIncome,
		Followers:     u.Followers,
		Following:     u.Following,
		CreatedAt:     u.CreatedAt,
		Status:        u.Status,
		Avatar:        u.Avatar,
		Bio:           u.Bio,
	}
}

// SessionUser is the public projection of a User. It has no password field,
// so it is the only shape held as "current user".
type SessionUser struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          Role       `json:"role"`
	MonthlyIncome float64    `json:"monthlyIncome"`
	Followers     int        `json:"followers"`
	Following     int        `json:"following"`
	CreatedAt     time.Time  `json:"createdAt"`
	Status        UserStatus `json:"status,omitempty"`
	Avatar        string     `json:"avatar,omitempty"`
	Bio           string     `json:"bio,omitempty"`
}

// IsAdmin reports whether the user has the admin role.
func (u SessionUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RegisterInput holds the registration form fields. An empty Role means RoleUser.
type RegisterInput struct {
	Name          string
	Email         string
	Password      string
	Role          Role
	MonthlyIncome float64
}

// ProfilePatch lists the fields a user may change on their own profile.
type ProfilePatch struct {
	Name          *string
	Email         *string
	Password      *string
	MonthlyIncome *float64
	Avatar        *string
	Bio           *string
}

// Apply merges the patch into u. Password must already be encoded by the caller.
func (p ProfilePatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.MonthlyIncome != nil {
		u.MonthlyIncome = *p.MonthlyIncome
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
}
