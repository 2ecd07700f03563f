// Package grpcserver exposes the Secret Santa gRPC API handlers.
package grpcserver

import (
	"context"
	"errors"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/and161185/secret-santa/internal/api"
	"github.com/and161185/secret-santa/internal/convert"
	"github.com/and161185/secret-santa/internal/errs"
	"github.com/and161185/secret-santa/internal/model"
	"github.com/and161185/secret-santa/internal/service"
)

// Server wires services into gRPC handlers.
type Server struct {
	api.UnimplementedSecretSantaServer
	auth   service.AuthService
	groups service.GroupService
	log    *zap.Logger
}

var _ api.SecretSantaServer = (*Server)(nil)

// New constructs a gRPC server with injected services.
func New(auth service.AuthService, groups service.GroupService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{auth: auth, groups: groups, log: log}
}

// toStatus maps domain errors to gRPC status codes with a readable message.
func (s *Server) toStatus(op string, err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrPasswordRequired):
		code = codes.InvalidArgument
	case errors.Is(err, errs.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, errs.ErrForbidden), errors.Is(err, errs.ErrInvalidCredential):
		code = codes.PermissionDenied
	case errors.Is(err, errs.ErrGroupFull), errors.Is(err, errs.ErrGroupClosed):
		code = codes.FailedPrecondition
	case errors.Is(err, errs.ErrConflict):
		code = codes.AlreadyExists
	case errors.Is(err, errs.ErrDrawFailed), errors.Is(err, errs.ErrVersionConflict):
		code = codes.Aborted
	case errors.Is(err, errs.ErrRateLimited):
		code = codes.ResourceExhausted
	case errors.Is(err, errs.ErrUnauthorized):
		code = codes.Unauthenticated
	default:
		s.log.Error(op, zap.Error(err))
		return status.Error(codes.Internal, op+": internal error")
	}
	return status.Error(code, err.Error())
}

func remoteIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// caller returns the identity AuthUnary put in context.
func caller(ctx context.Context) (model.Identity, error) {
	id, ok := IdentityFromCtx(ctx)
	if !ok {
		return model.Identity{}, status.Error(codes.Unauthenticated, "no auth")
	}
	return id, nil
}

// --- Auth ---

// Register creates a new account and signs it in.
func (s *Server) Register(ctx context.Context, req *api.RegisterRequest) (*api.AuthResponse, error) {
	id, sess, err := s.auth.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus("register", err)
	}
	return convert.ToAPIAuth(id, sess), nil
}

// Login authenticates a user and returns a session token.
func (s *Server) Login(ctx context.Context, req *api.LoginRequest) (*api.AuthResponse, error) {
	id, sess, err := s.auth.Login(ctx, req.Email, req.Password, remoteIP(ctx))
	if err != nil {
		return nil, s.toStatus("login", err)
	}
	return convert.ToAPIAuth(id, sess), nil
}

// Logout revokes the session the call was made with.
func (s *Server) Logout(ctx context.Context, _ *api.Empty) (*api.Empty, error) {
	tok, ok := TokenFromCtx(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	if err := s.auth.Logout(ctx, tok); err != nil {
		return nil, s.toStatus("logout", err)
	}
	return &api.Empty{}, nil
}

// Me returns the signed-in user.
func (s *Server) Me(ctx context.Context, _ *api.Empty) (*api.MeResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return &api.MeResponse{User: convert.ToAPIUser(id)}, nil
}

// --- Groups ---

func (s *Server) CreateGroup(ctx context.Context, req *api.CreateGroupRequest) (*api.CreateGroupResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	cg, err := s.groups.Create(ctx, id, convert.FromAPICreate(req))
	if err != nil {
		return nil, s.toStatus("create group", err)
	}
	return &api.CreateGroupResponse{Group: convert.ToAPIRef(cg.GroupRef), InviteLink: cg.InviteLink}, nil
}

func (s *Server) SearchGroups(ctx context.Context, req *api.SearchGroupsRequest) (*api.SearchGroupsResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	gs, err := s.groups.Search(ctx, id, req.Query)
	if err != nil {
		return nil, s.toStatus("search groups", err)
	}
	return &api.SearchGroupsResponse{Groups: convert.ToAPIPublicList(gs)}, nil
}

func (s *Server) JoinGroup(ctx context.Context, req *api.JoinGroupRequest) (*api.JoinGroupResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	ref, err := s.groups.Join(ctx, id, req.Code, req.Password)
	if err != nil {
		return nil, s.toStatus("join group", err)
	}
	return &api.JoinGroupResponse{Group: convert.ToAPIRef(ref)}, nil
}

func (s *Server) ListMyGroups(ctx context.Context, _ *api.Empty) (*api.ListMyGroupsResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	gs, err := s.groups.ListMine(ctx, id)
	if err != nil {
		return nil, s.toStatus("list groups", err)
	}
	return &api.ListMyGroupsResponse{Groups: convert.ToAPIMyGroups(gs)}, nil
}

func (s *Server) GetGroup(ctx context.Context, req *api.GroupIDRequest) (*api.GetGroupResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	gid, err := convert.ParseGroupID(req.GroupID)
	if err != nil {
		return nil, s.toStatus("get group", err)
	}
	v, err := s.groups.Get(ctx, id, gid)
	if err != nil {
		return nil, s.toStatus("get group", err)
	}
	return &api.GetGroupResponse{Group: convert.ToAPIGroupView(v)}, nil
}

// GetGroupByCode is public: it powers invite links before sign-in.
func (s *Server) GetGroupByCode(ctx context.Context, req *api.GetGroupByCodeRequest) (*api.GetGroupByCodeResponse, error) {
	g, err := s.groups.GetByCode(ctx, req.Code)
	if err != nil {
		return nil, s.toStatus("get group by code", err)
	}
	return &api.GetGroupByCodeResponse{Group: convert.ToAPIPublic(g)}, nil
}

// --- Wishlists ---

func (s *Server) SetWishlist(ctx context.Context, req *api.SetWishlistRequest) (*api.Empty, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	gid, err := convert.ParseGroupID(req.GroupID)
	if err != nil {
		return nil, s.toStatus("set wishlist", err)
	}
	if err := s.groups.SetWishlist(ctx, id, gid, convert.FromAPIWishlist(req.Items)); err != nil {
		return nil, s.toStatus("set wishlist", err)
	}
	return &api.Empty{}, nil
}

func (s *Server) GetWishlist(ctx context.Context, req *api.GroupIDRequest) (*api.WishlistResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	gid, err := convert.ParseGroupID(req.GroupID)
	if err != nil {
		return nil, s.toStatus("get wishlist", err)
	}
	items, err := s.groups.GetWishlist(ctx, id, gid)
	if err != nil {
		return nil, s.toStatus("get wishlist", err)
	}
	return &api.WishlistResponse{Items: convert.ToAPIWishlist(items)}, nil
}

// --- Draw ---

func (s *Server) Draw(ctx context.Context, req *api.GroupIDRequest) (*api.DrawResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	gid, err := convert.ParseGroupID(req.GroupID)
	if err != nil {
		return nil, s.toStatus("draw", err)
	}
	res, err := s.groups.Draw(ctx, id, gid)
	if err != nil {
		return nil, s.toStatus("draw", err)
	}
	return &api.DrawResponse{Results: convert.ToAPIPairings(res)}, nil
}

func (s *Server) GetMyReceiver(ctx context.Context, req *api.GroupIDRequest) (*api.ReceiverResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	gid, err := convert.ParseGroupID(req.GroupID)
	if err != nil {
		return nil, s.toStatus("get receiver", err)
	}
	r, err := s.groups.GetMyReceiver(ctx, id, gid)
	if err != nil {
		return nil, s.toStatus("get receiver", err)
	}
	return &api.ReceiverResponse{Receiver: convert.ToAPIReceiver(r)}, nil
}

func (s *Server) GetAllAssignments(ctx context.Context, req *api.GroupIDRequest) (*api.AssignmentsResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	gid, err := convert.ParseGroupID(req.GroupID)
	if err != nil {
		return nil, s.toStatus("get assignments", err)
	}
	res, err := s.groups.GetAllAssignments(ctx, id, gid)
	if err != nil {
		return nil, s.toStatus("get assignments", err)
	}
	return &api.AssignmentsResponse{Assignments: convert.ToAPIPairings(res)}, nil
}
