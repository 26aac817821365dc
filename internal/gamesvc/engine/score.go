package engine

import "sort"

// totalCardPoints is the sum of point values over a full deck: ranks count
// 2..10 at face value, J=11, Q=12, K=13, A=14, across four suits.
const totalCardPoints = 416

func cardPoints(c Card) int64 {
	return int64(c.Rank) + 2
}

// ComputeScores settles a finished game. The pot is the sum of all entry
// stakes; it is split in proportion to the card points each player put on
// the pile, rounded with a largest-remainder pass so the scores are
// non-negative integers summing exactly to the pot. The whole computation
// is a pure function of the played history and the stakes, so every
// observer of the same snapshot settles identically. Ties on remainder
// break by seat order.
//
// Seat scores are updated in place and the result is returned keyed by
// user id.
func (t *Table) ComputeScores() (map[int64]int64, error) {
	if t.State != StateFinished {
		return nil, ErrWrongState
	}

	var pot int64
	for _, s := range t.Seats {
		pot += s.Stake
	}

	points := make(map[int64]int64, len(t.Seats))
	for _, p := range t.Played {
		points[p.UserID] += cardPoints(p.Card)
	}

	type share struct {
		seat int
		base int64
		rem  int64
	}
	shares := make([]share, len(t.Seats))
	var allocated int64
	for i, s := range t.Seats {
		raw := pot * points[s.UserID]
		shares[i] = share{seat: i, base: raw / totalCardPoints, rem: raw % totalCardPoints}
		allocated += shares[i].base
	}

	// Hand out the rounding leftover, largest remainder first.
	sort.SliceStable(shares, func(a, b int) bool {
		return shares[a].rem > shares[b].rem
	})
	for i := int64(0); i < pot-allocated; i++ {
		shares[i%int64(len(shares))].base++
	}

	scores := make(map[int64]int64, len(t.Seats))
	for _, sh := range shares {
		seat := t.Seats[sh.seat]
		seat.Score = sh.base
		scores[seat.UserID] = sh.base
	}
	return scores, nil
}
