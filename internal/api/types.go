// Package api is the wire contract of the santa.v1.SecretSanta gRPC service.
package api

import "time"

// Empty is used where a call carries no payload.
type Empty struct{}

// User is the public part of an account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries a bearer token for the authorization metadata.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type MeResponse struct {
	User User `json:"user"`
}

type WishItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
}

type GroupRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type CreateGroupRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Password        string `json:"password,omitempty"`
	IsPublic        bool   `json:"isPublic"`
	MaxParticipants int    `json:"maxParticipants,omitempty"`
}

type CreateGroupResponse struct {
	Group      GroupRef `json:"group"`
	InviteLink string   `json:"inviteLink,omitempty"`
}

type SearchGroupsRequest struct {
	Query string `json:"query,omitempty"`
}

type PublicGroup struct {
	GroupRef
	Description         string `json:"description"`
	ParticipantsCount   int    `json:"participantsCount"`
	MaxParticipants     int    `json:"maxParticipants"`
	IsPasswordProtected bool   `json:"isPasswordProtected"`
	Status              string `json:"status"`
	AdminName           string `json:"adminName"`
}

type SearchGroupsResponse struct {
	Groups []PublicGroup `json:"groups"`
}

type JoinGroupRequest struct {
	Code     string `json:"code"`
	Password string `json:"password,omitempty"`
}

type JoinGroupResponse struct {
	Group GroupRef `json:"group"`
}

type MyGroup struct {
	GroupRef
	Description       string    `json:"description"`
	ParticipantsCount int       `json:"participantsCount"`
	MaxParticipants   int       `json:"maxParticipants"`
	IsAdmin           bool      `json:"isAdmin"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
}

type ListMyGroupsResponse struct {
	Groups []MyGroup `json:"groups"`
}

// GroupIDRequest addresses one group by ID.
type GroupIDRequest struct {
	GroupID string `json:"groupId"`
}

type Participant struct {
	UserID        string `json:"userId"`
	Name          string `json:"name"`
	IsAdmin       bool   `json:"isAdmin"`
	HasWishlist   bool   `json:"hasWishlist"`
	WishlistCount int    `json:"wishlistCount"`
}

type Receiver struct {
	Name     string     `json:"name"`
	Wishlist []WishItem `json:"wishlist"`
}

type GroupView struct {
	GroupRef
	Description         string        `json:"description"`
	Participants        []Participant `json:"participants"`
	ParticipantsCount   int           `json:"participantsCount"`
	MaxParticipants     int           `json:"maxParticipants"`
	IsAdmin             bool          `json:"isAdmin"`
	IsPublic            bool          `json:"isPublic"`
	IsPasswordProtected bool          `json:"isPasswordProtected"`
	Status              string        `json:"status"`
	CreatedAt           time.Time     `json:"createdAt"`
	DrawDate            *time.Time    `json:"drawDate"`
	MyReceiver          *Receiver     `json:"myReceiver"`
}

type GetGroupResponse struct {
	Group GroupView `json:"group"`
}

type GetGroupByCodeRequest struct {
	Code string `json:"code"`
}

type GetGroupByCodeResponse struct {
	Group PublicGroup `json:"group"`
}

// SetWishlistRequest replaces the caller's wishlist. A null or absent items
// field stores an empty list; anything but a list is rejected.
type SetWishlistRequest struct {
	GroupID string     `json:"groupId"`
	Items   []WishItem `json:"items"`
}

type WishlistResponse struct {
	Items []WishItem `json:"items"`
}

// Pairing is one line of a draw result by display name.
type Pairing struct {
	Giver    string `json:"giver"`
	Receiver string `json:"receiver"`
}

type DrawResponse struct {
	Results []Pairing `json:"results"`
}

type ReceiverResponse struct {
	Receiver Receiver `json:"receiver"`
}

type AssignmentsResponse struct {
	Assignments []Pairing `json:"assignments"`
}
