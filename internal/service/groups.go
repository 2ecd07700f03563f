package service

import (
	"context"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	pkgcrypto "github.com/and161185/secret-santa/internal/crypto"
	"github.com/and161185/secret-santa/internal/draw"
	"github.com/and161185/secret-santa/internal/errs"
	"github.com/and161185/secret-santa/internal/joincode"
	"github.com/and161185/secret-santa/internal/limiter"
	"github.com/and161185/secret-santa/internal/model"
	"github.com/and161185/secret-santa/internal/repository"
)

// GroupService defines the group lifecycle: creation, membership, wishlists and the draw.
type GroupService interface {
	Create(ctx context.Context, who model.Identity, spec model.GroupSpec) (CreatedGroup, error)
	// Search lists public, active, non-full groups who has not joined yet.
	Search(ctx context.Context, who model.Identity, query string) ([]PublicGroup, error)
	Join(ctx context.Context, who model.Identity, code, password string) (GroupRef, error)
	ListMine(ctx context.Context, who model.Identity) ([]MyGroup, error)
	Get(ctx context.Context, who model.Identity, groupID uuid.UUID) (GroupView, error)
	// GetByCode needs no identity and reveals public info only.
	GetByCode(ctx context.Context, code string) (PublicGroup, error)
	SetWishlist(ctx context.Context, who model.Identity, groupID uuid.UUID, items []model.WishItem) error
	GetWishlist(ctx context.Context, who model.Identity, groupID uuid.UUID) ([]model.WishItem, error)
	// Draw is organizer-only and happens once per group.
	Draw(ctx context.Context, who model.Identity, groupID uuid.UUID) ([]Pairing, error)
	GetMyReceiver(ctx context.Context, who model.Identity, groupID uuid.UUID) (ReceiverView, error)
	GetAllAssignments(ctx context.Context, who model.Identity, groupID uuid.UUID) ([]Pairing, error)
}

// GroupOptions carries the optional collaborators of GroupServiceImpl.
type GroupOptions struct {
	Hasher     pkgcrypto.Hasher
	Limiter    limiter.Limiter // join password attempts
	Log        *zap.Logger
	Metrics    Metrics
	PublicURL  string // base of invite links
	DefaultMax int    // capacity when the organizer gives none
}

type GroupServiceImpl struct {
	users      collection[model.User]
	groups     collection[model.Group]
	hasher     pkgcrypto.Hasher
	lim        limiter.Limiter
	log        *zap.Logger
	metrics    Metrics
	publicURL  string
	defaultMax int
	now        func() time.Time
}

var _ GroupService = (*GroupServiceImpl)(nil)

// NewGroupService constructs GroupService over both collections.
func NewGroupService(users repository.UserStore, groups repository.GroupStore, opt GroupOptions) *GroupServiceImpl {
	if opt.Hasher == (pkgcrypto.Hasher{}) {
		opt.Hasher = pkgcrypto.Default()
	}
	if opt.Limiter == nil {
		opt.Limiter = limiter.NewMemory(limiter.DefaultPolicy())
	}
	if opt.Log == nil {
		opt.Log = zap.NewNop()
	}
	if opt.Metrics == nil {
		opt.Metrics = nopMetrics{}
	}
	if opt.DefaultMax < 2 {
		opt.DefaultMax = model.DefaultMaxParticipants
	}
	return &GroupServiceImpl{
		users:      collection[model.User]{store: users, name: repository.Users, backoff: defaultBackoff, metrics: opt.Metrics},
		groups:     collection[model.Group]{store: groups, name: repository.Groups, backoff: defaultBackoff, metrics: opt.Metrics},
		hasher:     opt.Hasher,
		lim:        opt.Limiter,
		log:        opt.Log,
		metrics:    opt.Metrics,
		publicURL:  strings.TrimRight(opt.PublicURL, "/"),
		defaultMax: opt.DefaultMax,
		now:        time.Now,
	}
}

func normalizeCode(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

func findByID(groups []model.Group, id uuid.UUID) int {
	for i := range groups {
		if groups[i].ID == id {
			return i
		}
	}
	return -1
}

func findByCode(groups []model.Group, code string) int {
	for i := range groups {
		if groups[i].Code == code {
			return i
		}
	}
	return -1
}

// Create stores a new active group with the organizer as its only participant.
func (s *GroupServiceImpl) Create(ctx context.Context, who model.Identity, spec model.GroupSpec) (CreatedGroup, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return CreatedGroup{}, errs.Validation("group name is required")
	}
	capacity := spec.MaxParticipants
	switch {
	case capacity == 0:
		capacity = s.defaultMax
	case capacity < 2:
		return CreatedGroup{}, errs.Validation("max participants must be at least 2, got %d", capacity)
	}

	gid, err := uuid.NewV4()
	if err != nil {
		return CreatedGroup{}, err
	}
	now := s.now().UTC()
	g := model.Group{
		ID:              gid,
		Name:            name,
		Description:     strings.TrimSpace(spec.Description),
		IsPublic:        spec.IsPublic,
		MaxParticipants: capacity,
		AdminID:         who.UserID,
		AdminName:       who.Name,
		Participants: []model.Participant{{
			UserID:   who.UserID,
			Name:     who.Name,
			Email:    who.Email,
			JoinedAt: now,
			IsAdmin:  true,
			Wishlist: []model.WishItem{},
		}},
		Assignments: map[uuid.UUID]model.Assignment{},
		Status:      model.StatusActive,
		CreatedAt:   now,
	}
	if spec.Password != "" {
		if g.PwdHash, g.PwdSalt, err = s.hasher.New(spec.Password); err != nil {
			return CreatedGroup{}, err
		}
	}

	ref, err := mutate(ctx, s.groups, func(groups []model.Group) ([]model.Group, GroupRef, error) {
		code, err := joincode.New(func(c string) bool { return findByCode(groups, c) >= 0 })
		if err != nil {
			return nil, GroupRef{}, err
		}
		ng := g
		ng.Code = code
		return append(groups, ng), refOf(&ng), nil
	})
	if err != nil {
		return CreatedGroup{}, err
	}

	if err := s.recordMembership(ctx, who.UserID, gid); err != nil {
		return CreatedGroup{}, err
	}
	s.log.Info("group created",
		zap.String("group_id", gid.String()),
		zap.String("code", ref.Code),
		zap.String("admin_id", who.UserID.String()),
	)
	return CreatedGroup{GroupRef: ref, InviteLink: s.inviteLink(ref.Code)}, nil
}

func (s *GroupServiceImpl) inviteLink(code string) string {
	if s.publicURL == "" {
		return ""
	}
	return s.publicURL + "/join/" + code
}

// recordMembership appends groupID to the user's group list. It is a separate
// save from the group itself; a missing user is skipped.
func (s *GroupServiceImpl) recordMembership(ctx context.Context, userID, groupID uuid.UUID) error {
	_, err := mutate(ctx, s.users, func(users []model.User) ([]model.User, struct{}, error) {
		for i := range users {
			if users[i].ID != userID {
				continue
			}
			if users[i].HasGroup(groupID) {
				return nil, struct{}{}, nil
			}
			users[i].Groups = append(users[i].Groups, groupID)
			return users, struct{}{}, nil
		}
		return nil, struct{}{}, nil
	})
	return err
}

// Search filters joinable public groups by a case-insensitive substring of name or code.
func (s *GroupServiceImpl) Search(ctx context.Context, who model.Identity, query string) ([]PublicGroup, error) {
	groups, err := s.groups.load(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := []PublicGroup{}
	for i := range groups {
		g := &groups[i]
		if !g.IsPublic || g.Status != model.StatusActive || g.Full() || g.IsParticipant(who.UserID) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(g.Name), q) && !strings.Contains(strings.ToLower(g.Code), q) {
			continue
		}
		out = append(out, publicOf(g))
	}
	return out, nil
}

// Join adds who to the group behind code.
func (s *GroupServiceImpl) Join(ctx context.Context, who model.Identity, code, password string) (GroupRef, error) {
	code = normalizeCode(code)
	if code == "" {
		return GroupRef{}, errs.Validation("join code is required")
	}

	groups, err := s.groups.load(ctx)
	if err != nil {
		return GroupRef{}, err
	}
	i := findByCode(groups, code)
	if i < 0 {
		return GroupRef{}, errs.ErrNotFound
	}
	if err := s.checkGroupPassword(ctx, who, &groups[i], password); err != nil {
		return GroupRef{}, err
	}

	ref, err := mutate(ctx, s.groups, func(groups []model.Group) ([]model.Group, GroupRef, error) {
		i := findByCode(groups, code)
		if i < 0 {
			return nil, GroupRef{}, errs.ErrNotFound
		}
		g := &groups[i]
		switch {
		case g.IsParticipant(who.UserID):
			return nil, GroupRef{}, errs.ErrAlreadyMember
		case g.Full():
			return nil, GroupRef{}, errs.ErrGroupFull
		case g.Status != model.StatusActive:
			return nil, GroupRef{}, errs.ErrGroupClosed
		}
		g.Participants = append(g.Participants, model.Participant{
			UserID:   who.UserID,
			Name:     who.Name,
			Email:    who.Email,
			JoinedAt: s.now().UTC(),
			Wishlist: []model.WishItem{},
		})
		return groups, refOf(g), nil
	})
	if err != nil {
		return GroupRef{}, err
	}

	if err := s.recordMembership(ctx, who.UserID, ref.ID); err != nil {
		return GroupRef{}, err
	}
	s.log.Info("group joined", zap.String("group_id", ref.ID.String()), zap.String("user_id", who.UserID.String()))
	return ref, nil
}

// checkGroupPassword verifies the join password of a protected group, throttled per (group, user).
func (s *GroupServiceImpl) checkGroupPassword(ctx context.Context, who model.Identity, g *model.Group, password string) error {
	if !g.Protected() {
		return nil
	}
	if password == "" {
		return errs.ErrPasswordRequired
	}
	subject := limiter.GroupSubject(g.ID.String())
	key := who.UserID.Bytes()

	allowed, _, err := s.lim.Allow(ctx, subject, key)
	if err != nil {
		return err
	}
	if !allowed {
		return errs.ErrRateLimited
	}
	if !s.hasher.Verify(password, g.PwdSalt, g.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, subject, key); ferr == nil && blocked {
			return errs.ErrRateLimited
		}
		return errs.ErrInvalidCredential
	}
	_ = s.lim.Success(ctx, subject, key)
	return nil
}

// ListMine returns every group who participates in.
func (s *GroupServiceImpl) ListMine(ctx context.Context, who model.Identity) ([]MyGroup, error) {
	groups, err := s.groups.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []MyGroup{}
	for i := range groups {
		g := &groups[i]
		if !g.IsParticipant(who.UserID) {
			continue
		}
		out = append(out, MyGroup{
			GroupRef:          refOf(g),
			Description:       g.Description,
			ParticipantsCount: len(g.Participants),
			MaxParticipants:   g.MaxParticipants,
			IsAdmin:           g.AdminID == who.UserID,
			Status:            g.Status,
			CreatedAt:         g.CreatedAt,
		})
	}
	return out, nil
}

// memberGroup loads the group and requires who to be a participant.
func (s *GroupServiceImpl) memberGroup(ctx context.Context, who model.Identity, groupID uuid.UUID) (*model.Group, error) {
	groups, err := s.groups.load(ctx)
	if err != nil {
		return nil, err
	}
	i := findByID(groups, groupID)
	if i < 0 {
		return nil, errs.ErrNotFound
	}
	if !groups[i].IsParticipant(who.UserID) {
		return nil, errs.ErrForbidden
	}
	return &groups[i], nil
}

// Get returns the participant-safe view of a group.
func (s *GroupServiceImpl) Get(ctx context.Context, who model.Identity, groupID uuid.UUID) (GroupView, error) {
	g, err := s.memberGroup(ctx, who, groupID)
	if err != nil {
		return GroupView{}, err
	}
	v := GroupView{
		GroupRef:          refOf(g),
		Description:       g.Description,
		Participants:      make([]ParticipantView, 0, len(g.Participants)),
		ParticipantsCount: len(g.Participants),
		MaxParticipants:   g.MaxParticipants,
		IsAdmin:           g.AdminID == who.UserID,
		IsPublic:          g.IsPublic,
		Protected:         g.Protected(),
		Status:            g.Status,
		CreatedAt:         g.CreatedAt,
		DrawAt:            g.DrawAt,
	}
	for _, p := range g.Participants {
		v.Participants = append(v.Participants, ParticipantView{
			UserID:        p.UserID,
			Name:          p.Name,
			IsAdmin:       p.IsAdmin,
			HasWishlist:   len(p.Wishlist) > 0,
			WishlistCount: len(p.Wishlist),
		})
	}
	if g.Status == model.StatusCompleted {
		if r, ok := receiverOf(g, who.UserID); ok {
			v.MyReceiver = &r
		}
	}
	return v, nil
}

// GetByCode returns public info for the group behind code.
func (s *GroupServiceImpl) GetByCode(ctx context.Context, code string) (PublicGroup, error) {
	groups, err := s.groups.load(ctx)
	if err != nil {
		return PublicGroup{}, err
	}
	i := findByCode(groups, normalizeCode(code))
	if i < 0 {
		return PublicGroup{}, errs.ErrNotFound
	}
	return publicOf(&groups[i]), nil
}

// SetWishlist replaces who's own wishlist in the group. A nil list stores an empty one.
// Items are stored exactly as given.
func (s *GroupServiceImpl) SetWishlist(ctx context.Context, who model.Identity, groupID uuid.UUID, items []model.WishItem) error {
	items = nonNil(items)

	_, err := mutate(ctx, s.groups, func(groups []model.Group) ([]model.Group, struct{}, error) {
		i := findByID(groups, groupID)
		if i < 0 {
			return nil, struct{}{}, errs.ErrNotFound
		}
		p, ok := groups[i].Participant(who.UserID)
		if !ok {
			return nil, struct{}{}, errs.ErrForbidden
		}
		p.Wishlist = append([]model.WishItem{}, items...)
		return groups, struct{}{}, nil
	})
	return err
}

// GetWishlist returns who's own wishlist in the group.
func (s *GroupServiceImpl) GetWishlist(ctx context.Context, who model.Identity, groupID uuid.UUID) ([]model.WishItem, error) {
	g, err := s.memberGroup(ctx, who, groupID)
	if err != nil {
		return nil, err
	}
	p, _ := g.Participant(who.UserID)
	return nonNil(p.Wishlist), nil
}

// Draw assigns every participant a receiver and closes the group in one save.
func (s *GroupServiceImpl) Draw(ctx context.Context, who model.Identity, groupID uuid.UUID) ([]Pairing, error) {
	attempts := 0
	res, err := mutate(ctx, s.groups, func(groups []model.Group) ([]model.Group, []Pairing, error) {
		i := findByID(groups, groupID)
		if i < 0 {
			return nil, nil, errs.ErrNotFound
		}
		g := &groups[i]
		if g.AdminID != who.UserID {
			return nil, nil, errs.ErrForbidden
		}
		if g.Status == model.StatusCompleted {
			return nil, nil, errs.ErrGroupClosed
		}
		if len(g.Participants) < 2 {
			return nil, nil, errs.Validation("need at least 2 participants, have %d", len(g.Participants))
		}

		var (
			as  map[uuid.UUID]model.Assignment
			err error
		)
		as, attempts, err = draw.Assign(g.Participants)
		if err != nil {
			return nil, nil, err
		}
		at := s.now().UTC()
		g.Assignments = as
		g.Status = model.StatusCompleted
		g.DrawAt = &at
		return groups, pairings(g), nil
	})
	if attempts > 0 {
		s.metrics.ObserveDraw(attempts, err)
	}
	if err != nil {
		if attempts > 0 {
			s.log.Warn("draw failed", zap.String("group_id", groupID.String()), zap.Int("attempts", attempts), zap.Error(err))
		}
		return nil, err
	}
	s.log.Info("draw held", zap.String("group_id", groupID.String()), zap.Int("participants", len(res)), zap.Int("attempts", attempts))
	return res, nil
}

// GetMyReceiver returns who's receiver once the draw is held.
func (s *GroupServiceImpl) GetMyReceiver(ctx context.Context, who model.Identity, groupID uuid.UUID) (ReceiverView, error) {
	g, err := s.memberGroup(ctx, who, groupID)
	if err != nil {
		return ReceiverView{}, err
	}
	if g.Status != model.StatusCompleted {
		return ReceiverView{}, errs.Validation("draw not held yet")
	}
	r, ok := receiverOf(g, who.UserID)
	if !ok {
		// joined after the draw is impossible; a missing entry means damaged data
		return ReceiverView{}, errs.ErrNotFound
	}
	return r, nil
}

// GetAllAssignments returns every pairing to the organizer.
func (s *GroupServiceImpl) GetAllAssignments(ctx context.Context, who model.Identity, groupID uuid.UUID) ([]Pairing, error) {
	groups, err := s.groups.load(ctx)
	if err != nil {
		return nil, err
	}
	i := findByID(groups, groupID)
	if i < 0 {
		return nil, errs.ErrNotFound
	}
	g := &groups[i]
	if g.AdminID != who.UserID {
		return nil, errs.ErrForbidden
	}
	if g.Status != model.StatusCompleted {
		return nil, errs.Validation("draw not held yet")
	}
	return pairings(g), nil
}
