package filestore

import (
	"encoding/json"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/secret-santa/internal/model"
)

// Bare-array files come from the earlier server. Their records keep a single
// bcrypt "password" field instead of pwdHash/pwdSalt and name the draw
// timestamp "drawDate". Those fields are mapped so protected groups stay
// protected and users can still log in.

type legacyUser struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Password  *string     `json:"password"`
	PwdHash   []byte      `json:"pwdHash"`
	PwdSalt   []byte      `json:"pwdSalt"`
	Groups    []uuid.UUID `json:"groups"`
	CreatedAt time.Time   `json:"createdAt"`
}

type legacyParticipant struct {
	UserID   uuid.UUID    `json:"userId"`
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	JoinedAt time.Time    `json:"joinedAt"`
	IsAdmin  bool         `json:"isAdmin"`
	Wishlist []legacyWish `json:"wishlist"`
}

type legacyAssignment struct {
	UserID   uuid.UUID    `json:"userId"`
	Name     string       `json:"name"`
	Wishlist []legacyWish `json:"wishlist"`
}

type legacyGroup struct {
	ID              uuid.UUID                      `json:"id"`
	Code            string                         `json:"code"`
	Name            string                         `json:"name"`
	Description     string                         `json:"description"`
	Password        *string                        `json:"password"`
	PwdHash         []byte                         `json:"pwdHash"`
	PwdSalt         []byte                         `json:"pwdSalt"`
	IsPublic        bool                           `json:"isPublic"`
	MaxParticipants int                            `json:"maxParticipants"`
	AdminID         uuid.UUID                      `json:"adminId"`
	AdminName       string                         `json:"adminName"`
	Participants    []legacyParticipant            `json:"participants"`
	Assignments     map[uuid.UUID]legacyAssignment `json:"assignments"`
	Status          model.GroupStatus              `json:"status"`
	CreatedAt       time.Time                      `json:"createdAt"`
	DrawDate        *time.Time                     `json:"drawDate"`
	DrawAt          *time.Time                     `json:"drawAt"`
}

// legacyWish accepts either a plain string or an object item.
type legacyWish model.WishItem

func (w *legacyWish) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*w = legacyWish{Name: s}
		return nil
	}
	var it model.WishItem
	if err := json.Unmarshal(b, &it); err != nil {
		return err
	}
	*w = legacyWish(it)
	return nil
}

func wishes(in []legacyWish) []model.WishItem {
	out := make([]model.WishItem, len(in))
	for i, w := range in {
		out[i] = model.WishItem(w)
	}
	return out
}

// hashOf prefers an already converted hash and falls back to the bcrypt string.
func hashOf(pwdHash []byte, password *string) []byte {
	if len(pwdHash) > 0 {
		return pwdHash
	}
	if password == nil || *password == "" {
		return nil
	}
	return []byte(*password)
}

func (u legacyUser) model() model.User {
	m := model.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		PwdHash:   hashOf(u.PwdHash, u.Password),
		Groups:    u.Groups,
		CreatedAt: u.CreatedAt,
	}
	if len(u.PwdHash) > 0 {
		m.PwdSalt = u.PwdSalt
	}
	if m.Groups == nil {
		m.Groups = []uuid.UUID{}
	}
	return m
}

func (g legacyGroup) model() model.Group {
	m := model.Group{
		ID:              g.ID,
		Code:            g.Code,
		Name:            g.Name,
		Description:     g.Description,
		PwdHash:         hashOf(g.PwdHash, g.Password),
		IsPublic:        g.IsPublic,
		MaxParticipants: g.MaxParticipants,
		AdminID:         g.AdminID,
		AdminName:       g.AdminName,
		Participants:    make([]model.Participant, len(g.Participants)),
		Assignments:     make(map[uuid.UUID]model.Assignment, len(g.Assignments)),
		Status:          g.Status,
		CreatedAt:       g.CreatedAt,
		DrawAt:          g.DrawAt,
	}
	if len(g.PwdHash) > 0 {
		m.PwdSalt = g.PwdSalt
	}
	if m.DrawAt == nil {
		m.DrawAt = g.DrawDate
	}
	if m.MaxParticipants <= 0 {
		m.MaxParticipants = model.DefaultMaxParticipants
	}
	if m.Status == "" {
		m.Status = model.StatusActive
	}
	for i, p := range g.Participants {
		m.Participants[i] = model.Participant{
			UserID:   p.UserID,
			Name:     p.Name,
			Email:    p.Email,
			JoinedAt: p.JoinedAt,
			IsAdmin:  p.IsAdmin,
			Wishlist: wishes(p.Wishlist),
		}
	}
	for giver, a := range g.Assignments {
		m.Assignments[giver] = model.Assignment{UserID: a.UserID, Name: a.Name, Wishlist: wishes(a.Wishlist)}
	}
	return m
}

// decodeLegacy decodes a bare JSON array. Users and groups go through their
// legacy shapes; any other record type decodes as is.
func decodeLegacy[T any](b []byte) ([]T, error) {
	var recs []T
	switch out := any(&recs).(type) {
	case *[]model.User:
		var in []legacyUser
		if err := json.Unmarshal(b, &in); err != nil {
			return nil, err
		}
		*out = make([]model.User, len(in))
		for i, u := range in {
			(*out)[i] = u.model()
		}
	case *[]model.Group:
		var in []legacyGroup
		if err := json.Unmarshal(b, &in); err != nil {
			return nil, err
		}
		*out = make([]model.Group, len(in))
		for i, g := range in {
			(*out)[i] = g.model()
		}
	default:
		if err := json.Unmarshal(b, &recs); err != nil {
			return nil, err
		}
	}
	if recs == nil {
		recs = []T{}
	}
	return recs, nil
}
