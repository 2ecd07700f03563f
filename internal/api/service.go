package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "santa.v1.SecretSanta"

// Method names.
const (
	MethodRegister          = "Register"
	MethodLogin             = "Login"
	MethodLogout            = "Logout"
	MethodMe                = "Me"
	MethodCreateGroup       = "CreateGroup"
	MethodSearchGroups      = "SearchGroups"
	MethodJoinGroup         = "JoinGroup"
	MethodListMyGroups      = "ListMyGroups"
	MethodGetGroup          = "GetGroup"
	MethodGetGroupByCode    = "GetGroupByCode"
	MethodSetWishlist       = "SetWishlist"
	MethodGetWishlist       = "GetWishlist"
	MethodDraw              = "Draw"
	MethodGetMyReceiver     = "GetMyReceiver"
	MethodGetAllAssignments = "GetAllAssignments"
)

// FullMethod returns "/santa.v1.SecretSanta/<method>".
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

// SecretSantaServer is the server API for the SecretSanta service.
type SecretSantaServer interface {
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	Logout(context.Context, *Empty) (*Empty, error)
	Me(context.Context, *Empty) (*MeResponse, error)
	CreateGroup(context.Context, *CreateGroupRequest) (*CreateGroupResponse, error)
	SearchGroups(context.Context, *SearchGroupsRequest) (*SearchGroupsResponse, error)
	JoinGroup(context.Context, *JoinGroupRequest) (*JoinGroupResponse, error)
	ListMyGroups(context.Context, *Empty) (*ListMyGroupsResponse, error)
	GetGroup(context.Context, *GroupIDRequest) (*GetGroupResponse, error)
	GetGroupByCode(context.Context, *GetGroupByCodeRequest) (*GetGroupByCodeResponse, error)
	SetWishlist(context.Context, *SetWishlistRequest) (*Empty, error)
	GetWishlist(context.Context, *GroupIDRequest) (*WishlistResponse, error)
	Draw(context.Context, *GroupIDRequest) (*DrawResponse, error)
	GetMyReceiver(context.Context, *GroupIDRequest) (*ReceiverResponse, error)
	GetAllAssignments(context.Context, *GroupIDRequest) (*AssignmentsResponse, error)
}

// unary adapts a typed handler to grpc.MethodDesc. Undecodable payloads are
// reported as InvalidArgument.
func unary[Req, Resp any](method string, call func(SecretSantaServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "validation: malformed request: %s", status.Convert(err).Message())
			}
			if interceptor == nil {
				return call(srv.(SecretSantaServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SecretSantaServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes santa.v1.SecretSanta for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SecretSantaServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodRegister, SecretSantaServer.Register),
		unary(MethodLogin, SecretSantaServer.Login),
		unary(MethodLogout, SecretSantaServer.Logout),
		unary(MethodMe, SecretSantaServer.Me),
		unary(MethodCreateGroup, SecretSantaServer.CreateGroup),
		unary(MethodSearchGroups, SecretSantaServer.SearchGroups),
		unary(MethodJoinGroup, SecretSantaServer.JoinGroup),
		unary(MethodListMyGroups, SecretSantaServer.ListMyGroups),
		unary(MethodGetGroup, SecretSantaServer.GetGroup),
		unary(MethodGetGroupByCode, SecretSantaServer.GetGroupByCode),
		unary(MethodSetWishlist, SecretSantaServer.SetWishlist),
		unary(MethodGetWishlist, SecretSantaServer.GetWishlist),
		unary(MethodDraw, SecretSantaServer.Draw),
		unary(MethodGetMyReceiver, SecretSantaServer.GetMyReceiver),
		unary(MethodGetAllAssignments, SecretSantaServer.GetAllAssignments),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "santa/v1/santa.json",
}

// RegisterSecretSantaServer registers srv on s.
func RegisterSecretSantaServer(s grpc.ServiceRegistrar, srv SecretSantaServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// UnimplementedSecretSantaServer can be embedded to satisfy SecretSantaServer partially.
type UnimplementedSecretSantaServer struct{}

func unimplemented(m string) error { return status.Errorf(codes.Unimplemented, "method %s not implemented", m) }

func (UnimplementedSecretSantaServer) Register(context.Context, *RegisterRequest) (*AuthResponse, error) {
	return nil, unimplemented(MethodRegister)
}
func (UnimplementedSecretSantaServer) Login(context.Context, *LoginRequest) (*AuthResponse, error) {
	return nil, unimplemented(MethodLogin)
}
func (UnimplementedSecretSantaServer) Logout(context.Context, *Empty) (*Empty, error) {
	return nil, unimplemented(MethodLogout)
}
func (UnimplementedSecretSantaServer) Me(context.Context, *Empty) (*MeResponse, error) {
	return nil, unimplemented(MethodMe)
}
func (UnimplementedSecretSantaServer) CreateGroup(context.Context, *CreateGroupRequest) (*CreateGroupResponse, error) {
	return nil, unimplemented(MethodCreateGroup)
}
func (UnimplementedSecretSantaServer) SearchGroups(context.Context, *SearchGroupsRequest) (*SearchGroupsResponse, error) {
	return nil, unimplemented(MethodSearchGroups)
}
func (UnimplementedSecretSantaServer) JoinGroup(context.Context, *JoinGroupRequest) (*JoinGroupResponse, error) {
	return nil, unimplemented(MethodJoinGroup)
}
func (UnimplementedSecretSantaServer) ListMyGroups(context.Context, *Empty) (*ListMyGroupsResponse, error) {
	return nil, unimplemented(MethodListMyGroups)
}
func (UnimplementedSecretSantaServer) GetGroup(context.Context, *GroupIDRequest) (*GetGroupResponse, error) {
	return nil, unimplemented(MethodGetGroup)
}
func (UnimplementedSecretSantaServer) GetGroupByCode(context.Context, *GetGroupByCodeRequest) (*GetGroupByCodeResponse, error) {
	return nil, unimplemented(MethodGetGroupByCode)
}
func (UnimplementedSecretSantaServer) SetWishlist(context.Context, *SetWishlistRequest) (*Empty, error) {
	return nil, unimplemented(MethodSetWishlist)
}
func (UnimplementedSecretSantaServer) GetWishlist(context.Context, *GroupIDRequest) (*WishlistResponse, error) {
	return nil, unimplemented(MethodGetWishlist)
}
func (UnimplementedSecretSantaServer) Draw(context.Context, *GroupIDRequest) (*DrawResponse, error) {
	return nil, unimplemented(MethodDraw)
}
func (UnimplementedSecretSantaServer) GetMyReceiver(context.Context, *GroupIDRequest) (*ReceiverResponse, error) {
	return nil, unimplemented(MethodGetMyReceiver)
}
func (UnimplementedSecretSantaServer) GetAllAssignments(context.Context, *GroupIDRequest) (*AssignmentsResponse, error) {
	return nil, unimplemented(MethodGetAllAssignments)
}
