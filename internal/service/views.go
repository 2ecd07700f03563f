package service

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/secret-santa/internal/model"
)

// GroupRef identifies a group to its members.
type GroupRef struct {
	ID   uuid.UUID
	Code string
	Name string
}

// CreatedGroup is returned to the organizer right after creation.
type CreatedGroup struct {
	GroupRef
	InviteLink string // empty when no public URL is configured
}

// PublicGroup is what anyone may see about a group.
type PublicGroup struct {
	GroupRef
	Description       string
	ParticipantsCount int
	MaxParticipants   int
	Protected         bool
	Status            model.GroupStatus
	AdminName         string
}

// MyGroup is one entry of the caller's group list.
type MyGroup struct {
	GroupRef
	Description       string
	ParticipantsCount int
	MaxParticipants   int
	IsAdmin           bool
	Status            model.GroupStatus
	CreatedAt         time.Time
}

// ParticipantView hides everything but wishlist size.
type ParticipantView struct {
	UserID        uuid.UUID
	Name          string
	IsAdmin       bool
	HasWishlist   bool
	WishlistCount int
}

// ReceiverView is the person the caller gives a gift to.
type ReceiverView struct {
	Name     string
	Wishlist []model.WishItem
}

// GroupView is the participant-safe view of a group.
type GroupView struct {
	GroupRef
	Description       string
	Participants      []ParticipantView
	ParticipantsCount int
	MaxParticipants   int
	IsAdmin           bool
	IsPublic          bool
	Protected         bool
	Status            model.GroupStatus
	CreatedAt         time.Time
	DrawAt            *time.Time
	MyReceiver        *ReceiverView // set only once the draw is held
}

// Pairing is one giver -> receiver line of a draw result, by display name.
type Pairing struct {
	Giver    string
	Receiver string
}

func refOf(g *model.Group) GroupRef { return GroupRef{ID: g.ID, Code: g.Code, Name: g.Name} }

func publicOf(g *model.Group) PublicGroup {
	return PublicGroup{
		GroupRef:          refOf(g),
		Description:       g.Description,
		ParticipantsCount: len(g.Participants),
		MaxParticipants:   g.MaxParticipants,
		Protected:         g.Protected(),
		Status:            g.Status,
		AdminName:         g.AdminName,
	}
}

// receiverOf resolves giver's receiver. The receiver's current wishlist wins
// over the snapshot taken at draw time.
func receiverOf(g *model.Group, giver uuid.UUID) (ReceiverView, bool) {
	a, ok := g.Assignments[giver]
	if !ok {
		return ReceiverView{}, false
	}
	wl := a.Wishlist
	name := a.Name
	if p, ok := g.Participant(a.UserID); ok {
		wl, name = p.Wishlist, p.Name
	}
	return ReceiverView{Name: name, Wishlist: nonNil(wl)}, true
}

// pairings lists draw results in participant order.
func pairings(g *model.Group) []Pairing {
	out := make([]Pairing, 0, len(g.Assignments))
	for _, p := range g.Participants {
		if a, ok := g.Assignments[p.UserID]; ok {
			out = append(out, Pairing{Giver: p.Name, Receiver: a.Name})
		}
	}
	return out
}

func nonNil(items []model.WishItem) []model.WishItem {
	if items == nil {
		return []model.WishItem{}
	}
	return items
}
