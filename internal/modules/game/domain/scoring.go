package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	MaxPoints int64 = 1500
	MinPoints int64 = 100
)

// PayoutMultipliers are per-rank pool shares in basis points. They sum to
// 9700; the remaining 300 basis points stay in the pool as the protocol fee.
var PayoutMultipliers = [10]int64{3700, 2800, 1900, 900, 500, 300, 200, 100, 100, 100}

// GuessPoints returns the time-decayed score for a correct guess. Full
// points at the start of the round, decaying linearly to MinPoints at the
// end. roundDuration must be positive.
func GuessPoints(roundDuration, elapsed time.Duration) int64 {
	duration := int64(roundDuration / time.Second)
	elapsedSeconds := int64(elapsed / time.Second)

	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}
	if elapsedSeconds > duration {
		elapsedSeconds = duration
	}

	timeFactor := duration - elapsedSeconds
	return MinPoints + (MaxPoints-MinPoints)*timeFactor/duration
}

// PayoutAmount returns the pool share for a rank (0-indexed). Ranks beyond
// the multiplier table receive nothing.
func PayoutAmount(totalStaked int64, rank int) (int64, error) {
	if rank < 0 || rank >= len(PayoutMultipliers) {
		return 0, nil
	}

	scaled, err := mulChecked(totalStaked, PayoutMultipliers[rank])
	if err != nil {
		return 0, err
	}

	return scaled / 10000, nil
}

type PlayerScore struct {
	PlayerID uuid.UUID `json:"playerId"`
	Score    int64     `json:"score"`
}

// RankScores orders scores descending. The sort is stable so ties keep their
// submission order, which keeps ranking deterministic across re-computation.
func RankScores(scores []PlayerScore) []PlayerScore {
	ranked := make([]PlayerScore, len(scores))
	copy(ranked, scores)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}
