package draw

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/secret-santa/internal/errs"
	"github.com/and161185/secret-santa/internal/model"
)

func withRandom(t testing.TB, fn func(int) (int, error)) {
	t.Helper()
	orig := drawRandomInt
	drawRandomInt = fn
	t.Cleanup(func() { drawRandomInt = orig })
}

func requireDerangement[ID comparable](t *testing.T, ids []ID, got map[ID]ID) {
	t.Helper()
	require.Len(t, got, len(ids))
	seen := make(map[ID]bool, len(ids))
	for _, giver := range ids {
		r, ok := got[giver]
		require.True(t, ok, "giver %v missing", giver)
		require.NotEqual(t, giver, r, "self assignment for %v", giver)
		require.False(t, seen[r], "receiver %v drawn twice", r)
		seen[r] = true
	}
	for _, id := range ids {
		require.True(t, seen[id], "%v never receives", id)
	}
}

func TestDerange_IsBijectionWithoutFixedPoints(t *testing.T) {
	for n := 2; n <= 12; n++ {
		ids := make([]int, n)
		for i := range ids {
			ids[i] = i * 7
		}
		for run := 0; run < 50; run++ {
			got, attempts, err := Derange(ids)
			require.NoError(t, err)
			require.GreaterOrEqual(t, attempts, 1)
			require.LessOrEqual(t, attempts, MaxAttempts)
			requireDerangement(t, ids, got)
		}
	}
}

func TestDerange_TwoParticipantsSwap(t *testing.T) {
	got, _, err := Derange([]string{"ann", "bob"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"ann": "bob", "bob": "ann"}, got)
}

func TestDerange_TooFew(t *testing.T) {
	_, _, err := Derange([]string{"solo"})
	require.ErrorIs(t, err, errs.ErrValidation)
	_, _, err = Derange[string](nil)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestDerange_ExhaustedBudget(t *testing.T) {
	// j == i on every step leaves the slice untouched: identity permutation every time
	withRandom(t, func(max int) (int, error) { return max - 1, nil })

	_, attempts, err := Derange([]int{1, 2, 3})
	require.ErrorIs(t, err, errs.ErrDrawFailed)
	require.Equal(t, MaxAttempts, attempts)
}

func TestDerange_RandomError(t *testing.T) {
	boom := errors.New("entropy")
	withRandom(t, func(int) (int, error) { return 0, boom })

	_, _, err := Derange([]int{1, 2, 3})
	require.ErrorIs(t, err, boom)
}

func TestDerange_RejectsThenAccepts(t *testing.T) {
	// first shuffle identity (rejected), then always pick 0: [a b c] -> [b c a]
	calls := 0
	withRandom(t, func(max int) (int, error) {
		calls++
		if calls <= 2 {
			return max - 1, nil
		}
		return 0, nil
	})

	got, attempts, err := Derange([]string{"a", "b", "c"})
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
	requireDerangement(t, []string{"a", "b", "c"}, got)
}

func TestDerange_RoughlyUniform(t *testing.T) {
	// n=3 has exactly two derangements
	ids := []string{"a", "b", "c"}
	counts := map[string]int{}
	const runs = 3000
	for i := 0; i < runs; i++ {
		got, _, err := Derange(ids)
		require.NoError(t, err)
		counts[got["a"]]++
	}
	require.Len(t, counts, 2)
	require.InDelta(t, runs/2, counts["b"], runs/10)
}

func TestAssign_SnapshotsReceiverWishlist(t *testing.T) {
	a, b := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	ps := []model.Participant{
		{UserID: a, Name: "Ann", Wishlist: []model.WishItem{{Name: "book"}}},
		{UserID: b, Name: "Bob"},
	}

	got, _, err := Assign(ps)
	require.NoError(t, err)
	require.Equal(t, b, got[a].UserID)
	require.Equal(t, "Bob", got[a].Name)
	require.Empty(t, got[a].Wishlist)
	require.Equal(t, "Ann", got[b].Name)
	require.Equal(t, "book", got[b].Wishlist[0].Name)

	// later edits do not leak into the snapshot
	ps[0].Wishlist[0].Name = "changed"
	require.Equal(t, "book", got[b].Wishlist[0].Name)
}

func TestAssign_TooFew(t *testing.T) {
	_, _, err := Assign([]model.Participant{{UserID: uuid.Must(uuid.NewV4())}})
	require.ErrorIs(t, err, errs.ErrValidation)
}

func ExampleDerange() {
	got, _, _ := Derange([]string{"ann", "bob"})
	fmt.Println(got["ann"], got["bob"])
	// Output: bob ann
}
