package domain

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_GuessPoints_Max_At_Round_Start(t *testing.T) {
	points := GuessPoints(RoundDuration, 0)

	require.Equal(t, MaxPoints, points)
}

func Test_GuessPoints_Min_At_Round_End(t *testing.T) {
	points := GuessPoints(RoundDuration, RoundDuration)

	require.Equal(t, MinPoints, points)
}

func Test_GuessPoints_Min_After_Round_End(t *testing.T) {
	points := GuessPoints(RoundDuration, RoundDuration+30*time.Second)

	require.Equal(t, MinPoints, points)
}

func Test_GuessPoints_Bounded_And_Non_Increasing(t *testing.T) {
	previous := MaxPoints

	for elapsed := time.Duration(0); elapsed <= RoundDuration; elapsed += time.Second {
		points := GuessPoints(RoundDuration, elapsed)

		require.GreaterOrEqual(t, points, MinPoints)
		require.LessOrEqual(t, points, MaxPoints)
		require.LessOrEqual(t, points, previous)

		previous = points
	}
}

func Test_GuessPoints_Midpoint_Is_Halfway(t *testing.T) {
	points := GuessPoints(RoundDuration, RoundDuration/2)

	require.Equal(t, MinPoints+(MaxPoints-MinPoints)/2, points)
}

func Test_PayoutMultipliers_Sum_To_9700_Basis_Points(t *testing.T) {
	var sum int64
	for _, m := range PayoutMultipliers {
		sum += m
	}

	require.Equal(t, int64(9700), sum)
}

func Test_PayoutAmount_Full_Table_Distributes_97_Percent(t *testing.T) {
	const totalStaked = int64(1_000_000_000)

	var distributed int64
	for rank := 0; rank < len(PayoutMultipliers); rank++ {
		amount, err := PayoutAmount(totalStaked, rank)
		require.NoError(t, err)

		distributed += amount
	}

	require.Equal(t, int64(970_000_000), distributed)
}

func Test_PayoutAmount_Zero_Beyond_Table(t *testing.T) {
	amount, err := PayoutAmount(1_000_000, 10)
	require.NoError(t, err)
	require.Equal(t, int64(0), amount)

	amount, err = PayoutAmount(1_000_000, -1)
	require.NoError(t, err)
	require.Equal(t, int64(0), amount)
}

func Test_PayoutAmount_Rounds_Down(t *testing.T) {
	// 37% of 399 is 147.63.
	amount, err := PayoutAmount(399, 0)
	require.NoError(t, err)
	require.Equal(t, int64(147), amount)
}

func Test_PayoutAmount_Rejects_Pools_That_Overflow_The_Scaling(t *testing.T) {
	_, err := PayoutAmount(math.MaxInt64/PayoutMultipliers[0]+1, 0)

	require.ErrorIs(t, err, ErrArithmeticOverflow)
}

func Test_RankScores_Orders_Descending(t *testing.T) {
	scores := []PlayerScore{
		{PlayerID: uuid.New(), Score: 100},
		{PlayerID: uuid.New(), Score: 300},
		{PlayerID: uuid.New(), Score: 200},
	}

	ranked := RankScores(scores)

	require.Equal(t, int64(300), ranked[0].Score)
	require.Equal(t, int64(200), ranked[1].Score)
	require.Equal(t, int64(100), ranked[2].Score)
}

func Test_RankScores_Ties_Keep_Submission_Order(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	scores := []PlayerScore{
		{PlayerID: first, Score: 300},
		{PlayerID: second, Score: 300},
		{PlayerID: uuid.New(), Score: 100},
	}

	ranked := RankScores(scores)

	require.Equal(t, first, ranked[0].PlayerID)
	require.Equal(t, second, ranked[1].PlayerID)
}

func Test_RankScores_Does_Not_Mutate_Input(t *testing.T) {
	scores := []PlayerScore{
		{PlayerID: uuid.New(), Score: 100},
		{PlayerID: uuid.New(), Score: 300},
	}

	_ = RankScores(scores)

	require.Equal(t, int64(100), scores[0].Score)
}
