package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_NewPayout_Is_Unclaimed(t *testing.T) {
	payout := NewPayout(uuid.New(), uuid.New(), 370, time.Now())

	require.False(t, payout.Claimed)
	require.False(t, payout.ClaimedAt.Valid)
	require.Equal(t, int64(370), payout.Amount)
}

func Test_Claim_Within_Deadline(t *testing.T) {
	endedAt := time.Now()
	payout := NewPayout(uuid.New(), uuid.New(), 370, endedAt)

	err := payout.Claim(endedAt, endedAt.Add(time.Hour))

	require.NoError(t, err)
	require.True(t, payout.Claimed)
	require.True(t, payout.ClaimedAt.Valid)
}

func Test_Claim_Twice_Fails(t *testing.T) {
	endedAt := time.Now()
	payout := NewPayout(uuid.New(), uuid.New(), 370, endedAt)

	require.NoError(t, payout.Claim(endedAt, endedAt.Add(time.Hour)))

	err := payout.Claim(endedAt, endedAt.Add(2*time.Hour))

	require.ErrorIs(t, err, ErrPayoutAlreadyClaimed)
}

func Test_Claim_After_Deadline_Fails(t *testing.T) {
	endedAt := time.Now()
	payout := NewPayout(uuid.New(), uuid.New(), 370, endedAt)

	err := payout.Claim(endedAt, endedAt.Add(ClaimDeadline))

	require.ErrorIs(t, err, ErrClaimDeadlineExceeded)
	require.False(t, payout.Claimed)
}

func Test_AwardPoints_Sets_Guessed_Flag(t *testing.T) {
	player := NewPlayerState(uuid.New(), uuid.New(), 0, time.Now())

	require.NoError(t, player.AwardPoints(1500))

	require.Equal(t, int64(1500), player.Score)
	require.True(t, player.HasGuessedCurrentRound)
}

func Test_AwardPoints_Accumulates_Across_Rounds(t *testing.T) {
	player := NewPlayerState(uuid.New(), uuid.New(), 0, time.Now())

	require.NoError(t, player.AwardPoints(1500))
	player.HasGuessedCurrentRound = false
	require.NoError(t, player.AwardPoints(100))

	require.Equal(t, int64(1600), player.Score)
}
