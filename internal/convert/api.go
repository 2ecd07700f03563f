// Package convert maps service views to wire messages and back.
package convert

import (
	"fmt"

	u "github.com/gofrs/uuid/v5"

	"github.com/and161185/secret-santa/internal/api"
	"github.com/and161185/secret-santa/internal/errs"
	model "github.com/and161185/secret-santa/internal/model"
	"github.com/and161185/secret-santa/internal/service"
)

// --- ids ---

// ParseGroupID parses a group ID sent by a client.
func ParseGroupID(s string) (u.UUID, error) {
	if s == "" {
		return u.Nil, errs.Validation("group id is required")
	}
	id, err := u.FromString(s)
	if err != nil {
		return u.Nil, fmt.Errorf("%w: bad group id %q", errs.ErrValidation, s)
	}
	return id, nil
}

// --- identity ---

// ToAPIUser converts an identity to its public wire form.
func ToAPIUser(id model.Identity) api.User {
	return api.User{ID: id.UserID.String(), Name: id.Name, Email: id.Email}
}

// ToAPIAuth wraps a session for the client.
func ToAPIAuth(id model.Identity, s model.Session) *api.AuthResponse {
	return &api.AuthResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, User: ToAPIUser(id)}
}

// --- wishlists ---

// FromAPIWishlist converts client items. nil stays nil; the service stores it as empty.
func FromAPIWishlist(in []api.WishItem) []model.WishItem {
	if in == nil {
		return nil
	}
	out := make([]model.WishItem, len(in))
	for i, it := range in {
		out[i] = model.WishItem{Name: it.Name, Description: it.Description, Link: it.Link}
	}
	return out
}

// ToAPIWishlist never returns nil so clients always see a list.
func ToAPIWishlist(in []model.WishItem) []api.WishItem {
	out := make([]api.WishItem, len(in))
	for i, it := range in {
		out[i] = api.WishItem{Name: it.Name, Description: it.Description, Link: it.Link}
	}
	return out
}

// --- groups ---

func ToAPIRef(r service.GroupRef) api.GroupRef {
	return api.GroupRef{ID: r.ID.String(), Code: r.Code, Name: r.Name}
}

// FromAPICreate converts a create request to a group spec.
func FromAPICreate(in *api.CreateGroupRequest) model.GroupSpec {
	return model.GroupSpec{
		Name:            in.Name,
		Description:     in.Description,
		Password:        in.Password,
		IsPublic:        in.IsPublic,
		MaxParticipants: in.MaxParticipants,
	}
}

func ToAPIPublic(g service.PublicGroup) api.PublicGroup {
	return api.PublicGroup{
		GroupRef:            ToAPIRef(g.GroupRef),
		Description:         g.Description,
		ParticipantsCount:   g.ParticipantsCount,
		MaxParticipants:     g.MaxParticipants,
		IsPasswordProtected: g.Protected,
		Status:              string(g.Status),
		AdminName:           g.AdminName,
	}
}

func ToAPIPublicList(in []service.PublicGroup) []api.PublicGroup {
	out := make([]api.PublicGroup, len(in))
	for i := range in {
		out[i] = ToAPIPublic(in[i])
	}
	return out
}

func ToAPIMyGroups(in []service.MyGroup) []api.MyGroup {
	out := make([]api.MyGroup, len(in))
	for i, g := range in {
		out[i] = api.MyGroup{
			GroupRef:          ToAPIRef(g.GroupRef),
			Description:       g.Description,
			ParticipantsCount: g.ParticipantsCount,
			MaxParticipants:   g.MaxParticipants,
			IsAdmin:           g.IsAdmin,
			Status:            string(g.Status),
			CreatedAt:         g.CreatedAt,
		}
	}
	return out
}

func ToAPIReceiver(r service.ReceiverView) api.Receiver {
	return api.Receiver{Name: r.Name, Wishlist: ToAPIWishlist(r.Wishlist)}
}

// ToAPIGroupView converts the participant-safe group view.
func ToAPIGroupView(v service.GroupView) api.GroupView {
	out := api.GroupView{
		GroupRef:            ToAPIRef(v.GroupRef),
		Description:         v.Description,
		Participants:        make([]api.Participant, len(v.Participants)),
		ParticipantsCount:   v.ParticipantsCount,
		MaxParticipants:     v.MaxParticipants,
		IsAdmin:             v.IsAdmin,
		IsPublic:            v.IsPublic,
		IsPasswordProtected: v.Protected,
		Status:              string(v.Status),
		CreatedAt:           v.CreatedAt,
		DrawDate:            v.DrawAt,
	}
	for i, p := range v.Participants {
		out.Participants[i] = api.Participant{
			UserID:        p.UserID.String(),
			Name:          p.Name,
			IsAdmin:       p.IsAdmin,
			HasWishlist:   p.HasWishlist,
			WishlistCount: p.WishlistCount,
		}
	}
	if v.MyReceiver != nil {
		r := ToAPIReceiver(*v.MyReceiver)
		out.MyReceiver = &r
	}
	return out
}

func ToAPIPairings(in []service.Pairing) []api.Pairing {
	out := make([]api.Pairing, len(in))
	for i, p := range in {
		out[i] = api.Pairing{Giver: p.Giver, Receiver: p.Receiver}
	}
	return out
}
