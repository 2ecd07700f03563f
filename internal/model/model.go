// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// GroupStatus is the lifecycle state of a group.
type GroupStatus string

const (
	// StatusActive groups accept new members.
	StatusActive GroupStatus = "active"
	// StatusCompleted groups have a committed draw.
	StatusCompleted GroupStatus = "completed"
)

// DefaultMaxParticipants is used when a group is created without a capacity.
const DefaultMaxParticipants = 20

// User represents a registered account. Passwords are never stored in plaintext.
type User struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"` // unique
	PwdHash   []byte      `json:"pwdHash"`
	PwdSalt   []byte      `json:"pwdSalt"`
	Groups    []uuid.UUID `json:"groups"`
	CreatedAt time.Time   `json:"createdAt"`
}

// HasGroup reports whether groupID is already recorded on the user.
func (u *User) HasGroup(groupID uuid.UUID) bool {
	for _, g := range u.Groups {
		if g == groupID {
			return true
		}
	}
	return false
}

// WishItem is an opaque user-supplied wish.
type WishItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
}

// Participant is a user's membership record inside one group.
type Participant struct {
	UserID   uuid.UUID  `json:"userId"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	JoinedAt time.Time  `json:"joinedAt"`
	IsAdmin  bool       `json:"isAdmin"`
	Wishlist []WishItem `json:"wishlist"`
}

// Assignment is the receiver a giver drew, with a wishlist snapshot taken at draw time.
type Assignment struct {
	UserID   uuid.UUID  `json:"userId"`
	Name     string     `json:"name"`
	Wishlist []WishItem `json:"wishlist"`
}

// Group is a Secret Santa circle.
type Group struct {
	ID              uuid.UUID                `json:"id"`
	Code            string                   `json:"code"` // unique join code
	Name            string                   `json:"name"`
	Description     string                   `json:"description"`
	PwdHash         []byte                   `json:"pwdHash,omitempty"` // nil when not protected
	PwdSalt         []byte                   `json:"pwdSalt,omitempty"`
	IsPublic        bool                     `json:"isPublic"`
	MaxParticipants int                      `json:"maxParticipants"`
	AdminID         uuid.UUID                `json:"adminId"`
	AdminName       string                   `json:"adminName"`
	Participants    []Participant            `json:"participants"`
	Assignments     map[uuid.UUID]Assignment `json:"assignments"`
	Status          GroupStatus              `json:"status"`
	CreatedAt       time.Time                `json:"createdAt"`
	DrawAt          *time.Time               `json:"drawAt"`
}

// Protected reports whether joining requires a password.
func (g *Group) Protected() bool { return len(g.PwdHash) > 0 }

// Full reports whether the group reached its capacity.
func (g *Group) Full() bool { return len(g.Participants) >= g.MaxParticipants }

// ParticipantIndex returns the position of userID in Participants or -1.
func (g *Group) ParticipantIndex(userID uuid.UUID) int {
	for i := range g.Participants {
		if g.Participants[i].UserID == userID {
			return i
		}
	}
	return -1
}

// IsParticipant reports whether userID is a member.
func (g *Group) IsParticipant(userID uuid.UUID) bool { return g.ParticipantIndex(userID) >= 0 }

// Participant returns the member record for userID.
func (g *Group) Participant(userID uuid.UUID) (*Participant, bool) {
	i := g.ParticipantIndex(userID)
	if i < 0 {
		return nil, false
	}
	return &g.Participants[i], true
}

// GroupSpec carries the caller-supplied fields of a new group.
type GroupSpec struct {
	Name            string
	Description     string
	Password        string
	IsPublic        bool
	MaxParticipants int
}

// Identity is the authenticated caller as resolved from a session.
type Identity struct {
	UserID uuid.UUID
	Name   string
	Email  string
}

// Session is an issued bearer token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}
