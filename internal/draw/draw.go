// Package draw produces Secret Santa assignments: a uniformly random
// derangement of the participants, so nobody draws themselves.
package draw

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/secret-santa/internal/errs"
	"github.com/and161185/secret-santa/internal/model"
)

// MaxAttempts bounds rejection sampling. For n >= 2 a shuffle is a
// derangement with probability close to 1/e, so exhaustion is vanishingly rare.
const MaxAttempts = 100

var errBadBound = errors.New("random bound must be positive")

var drawRandomInt = secureRandomInt

// Derange maps every id to a different id of the same set.
// It returns the mapping and how many shuffles it took.
// ids must hold at least two distinct values.
func Derange[ID comparable](ids []ID) (map[ID]ID, int, error) {
	if len(ids) < 2 {
		return nil, 0, errs.Validation("need at least 2 participants, have %d", len(ids))
	}

	perm := make([]ID, len(ids))
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		copy(perm, ids)
		if err := shuffle(perm); err != nil {
			return nil, attempt, fmt.Errorf("shuffle: %w", err)
		}
		if hasFixedPoint(ids, perm) {
			continue
		}
		out := make(map[ID]ID, len(ids))
		for i, giver := range ids {
			out[giver] = perm[i]
		}
		return out, attempt, nil
	}
	return nil, MaxAttempts, errs.ErrDrawFailed
}

// Assign draws over the group's participants and snapshots each receiver's
// name and current wishlist.
func Assign(participants []model.Participant) (map[uuid.UUID]model.Assignment, int, error) {
	ids := make([]uuid.UUID, len(participants))
	byID := make(map[uuid.UUID]*model.Participant, len(participants))
	for i := range participants {
		ids[i] = participants[i].UserID
		byID[ids[i]] = &participants[i]
	}

	pairs, attempts, err := Derange(ids)
	if err != nil {
		return nil, attempts, err
	}

	out := make(map[uuid.UUID]model.Assignment, len(pairs))
	for giver, receiver := range pairs {
		p := byID[receiver]
		wl := make([]model.WishItem, len(p.Wishlist))
		copy(wl, p.Wishlist)
		out[giver] = model.Assignment{UserID: receiver, Name: p.Name, Wishlist: wl}
	}
	return out, attempts, nil
}

// shuffle is Fisher–Yates driven by drawRandomInt.
func shuffle[ID any](s []ID) error {
	for i := len(s) - 1; i > 0; i-- {
		j, err := drawRandomInt(i + 1)
		if err != nil {
			return err
		}
		s[i], s[j] = s[j], s[i]
	}
	return nil
}

func hasFixedPoint[ID comparable](orig, perm []ID) bool {
	for i := range orig {
		if orig[i] == perm[i] {
			return true
		}
	}
	return false
}

func secureRandomInt(max int) (int, error) {
	if max <= 0 {
		return 0, errBadBound
	}
	n, err := crand.Int(crand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
