package api

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestCodec_Registered(t *testing.T) {
	t.Parallel()
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	require.Equal(t, "json", c.Name())
}

func TestCodec_WishlistShapes(t *testing.T) {
	t.Parallel()
	c := jsonCodec{}

	var req SetWishlistRequest
	require.NoError(t, c.Unmarshal([]byte(`{"groupId":"g","items":null}`), &req))
	require.Nil(t, req.Items)

	req = SetWishlistRequest{}
	require.NoError(t, c.Unmarshal([]byte(`{"groupId":"g"}`), &req))
	require.Nil(t, req.Items)

	require.Error(t, c.Unmarshal([]byte(`{"groupId":"g","items":"socks"}`), &req))
	require.Error(t, c.Unmarshal([]byte(`{"groupId":"g","items":{"name":"socks"}}`), &req))
}

func TestCodec_FlattensEmbeddedRef(t *testing.T) {
	t.Parallel()
	b, err := jsonCodec{}.Marshal(PublicGroup{GroupRef: GroupRef{ID: "1", Code: "ABC234", Name: "n"}})
	require.NoError(t, err)
	require.Contains(t, string(b), `"code":"ABC234"`)
	require.NotContains(t, string(b), "GroupRef")
}

func TestServiceDesc(t *testing.T) {
	t.Parallel()
	require.Equal(t, ServiceName, ServiceDesc.ServiceName)
	require.Len(t, ServiceDesc.Methods, 15)
	seen := map[string]bool{}
	for _, m := range ServiceDesc.Methods {
		require.False(t, seen[m.MethodName], m.MethodName)
		seen[m.MethodName] = true
		require.NotNil(t, m.Handler)
	}
	require.Equal(t, "/santa.v1.SecretSanta/Draw", FullMethod(MethodDraw))
}
