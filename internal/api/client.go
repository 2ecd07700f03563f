package api

import (
	"context"

	"google.golang.org/grpc"
)

// SecretSantaClient is the client API for the SecretSanta service.
type SecretSantaClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Logout(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	Me(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*MeResponse, error)
	CreateGroup(ctx context.Context, in *CreateGroupRequest, opts ...grpc.CallOption) (*CreateGroupResponse, error)
	SearchGroups(ctx context.Context, in *SearchGroupsRequest, opts ...grpc.CallOption) (*SearchGroupsResponse, error)
	JoinGroup(ctx context.Context, in *JoinGroupRequest, opts ...grpc.CallOption) (*JoinGroupResponse, error)
	ListMyGroups(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListMyGroupsResponse, error)
	GetGroup(ctx context.Context, in *GroupIDRequest, opts ...grpc.CallOption) (*GetGroupResponse, error)
	GetGroupByCode(ctx context.Context, in *GetGroupByCodeRequest, opts ...grpc.CallOption) (*GetGroupByCodeResponse, error)
	SetWishlist(ctx context.Context, in *SetWishlistRequest, opts ...grpc.CallOption) (*Empty, error)
	GetWishlist(ctx context.Context, in *GroupIDRequest, opts ...grpc.CallOption) (*WishlistResponse, error)
	Draw(ctx context.Context, in *GroupIDRequest, opts ...grpc.CallOption) (*DrawResponse, error)
	GetMyReceiver(ctx context.Context, in *GroupIDRequest, opts ...grpc.CallOption) (*ReceiverResponse, error)
	GetAllAssignments(ctx context.Context, in *GroupIDRequest, opts ...grpc.CallOption) (*AssignmentsResponse, error)
}

type secretSantaClient struct {
	cc grpc.ClientConnInterface
}

// NewSecretSantaClient returns a client that always speaks the JSON codec.
func NewSecretSantaClient(cc grpc.ClientConnInterface) SecretSantaClient {
	return &secretSantaClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *secretSantaClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *secretSantaClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *secretSantaClient) Logout(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodLogout, in, opts)
}

func (c *secretSantaClient) Me(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*MeResponse, error) {
	return invoke[MeResponse](ctx, c.cc, MethodMe, in, opts)
}

func (c *secretSantaClient) CreateGroup(ctx context.Context, in *CreateGroupRequest, opts ...grpc.CallOption) (*CreateGroupResponse, error) {
	return invoke[CreateGroupResponse](ctx, c.cc, MethodCreateGroup, in, opts)
}

func (c *secretSantaClient) SearchGroups(ctx context.Context, in *SearchGroupsRequest, opts ...grpc.CallOption) (*SearchGroupsResponse, error) {
	return invoke[SearchGroupsResponse](ctx, c.cc, MethodSearchGroups, in, opts)
}

func (c *secretSantaClient) JoinGroup(ctx context.Context, in *JoinGroupRequest, opts ...grpc.CallOption) (*JoinGroupResponse, error) {
	return invoke[JoinGroupResponse](ctx, c.cc, MethodJoinGroup, in, opts)
}

func (c *secretSantaClient) ListMyGroups(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListMyGroupsResponse, error) {
	return invoke[ListMyGroupsResponse](ctx, c.cc, MethodListMyGroups, in, opts)
}

func (c *secretSantaClient) GetGroup(ctx context.Context, in *GroupIDRequest, opts ...grpc.CallOption) (*GetGroupResponse, error) {
	return invoke[GetGroupResponse](ctx, c.cc, MethodGetGroup, in, opts)
}

func (c *secretSantaClient) GetGroupByCode(ctx context.Context, in *GetGroupByCodeRequest, opts ...grpc.CallOption) (*GetGroupByCodeResponse, error) {
	return invoke[GetGroupByCodeResponse](ctx, c.cc, MethodGetGroupByCode, in, opts)
}

func (c *secretSantaClient) SetWishlist(ctx context.Context, in *SetWishlistRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodSetWishlist, in, opts)
}

func (c *secretSantaClient) GetWishlist(ctx context.Context, in *GroupIDRequest, opts ...grpc.CallOption) (*WishlistResponse, error) {
	return invoke[WishlistResponse](ctx, c.cc, MethodGetWishlist, in, opts)
}

func (c *secretSantaClient) Draw(ctx context.Context, in *GroupIDRequest, opts ...grpc.CallOption) (*DrawResponse, error) {
	return invoke[DrawResponse](ctx, c.cc, MethodDraw, in, opts)
}

func (c *secretSantaClient) GetMyReceiver(ctx context.Context, in *GroupIDRequest, opts ...grpc.CallOption) (*ReceiverResponse, error) {
	return invoke[ReceiverResponse](ctx, c.cc, MethodGetMyReceiver, in, opts)
}

func (c *secretSantaClient) GetAllAssignments(ctx context.Context, in *GroupIDRequest, opts ...grpc.CallOption) (*AssignmentsResponse, error) {
	return invoke[AssignmentsResponse](ctx, c.cc, MethodGetAllAssignments, in, opts)
}
