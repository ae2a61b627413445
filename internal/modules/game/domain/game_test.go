package domain

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newLobbyConfig(t *testing.T, maxPlayers int) GameConfig {
	t.Helper()

	config, err := NewGameConfig(uuid.New(), 100, maxPlayers, uuid.New(), time.Now())
	require.NoError(t, err)

	return config
}

func Test_NewGameConfig_Rejects_Invalid_Player_Bounds(t *testing.T) {
	_, err := NewGameConfig(uuid.New(), 100, 1, uuid.New(), time.Now())
	require.ErrorIs(t, err, ErrInvalidPlayerCount)

	_, err = NewGameConfig(uuid.New(), 100, 11, uuid.New(), time.Now())
	require.ErrorIs(t, err, ErrInvalidPlayerCount)
}

func Test_NewGameConfig_Rejects_Non_Positive_Stake(t *testing.T) {
	_, err := NewGameConfig(uuid.New(), 0, 4, uuid.New(), time.Now())
	require.ErrorIs(t, err, ErrIncorrectStakeAmount)
}

func Test_NewGameConfig_Starts_In_Lobby(t *testing.T) {
	config := newLobbyConfig(t, 4)

	require.Equal(t, StatusLobby, config.Status)
	require.Equal(t, 0, config.PlayerCount)
	require.Len(t, config.Code, GameCodeLength)
}

func Test_AdmitPlayer_Increments_Count(t *testing.T) {
	config := newLobbyConfig(t, 4)

	err := config.AdmitPlayer(100, config.CreatedAt.Add(time.Minute))

	require.NoError(t, err)
	require.Equal(t, 1, config.PlayerCount)
}

func Test_AdmitPlayer_Rejects_Full_Game(t *testing.T) {
	config := newLobbyConfig(t, 2)
	now := config.CreatedAt.Add(time.Minute)

	require.NoError(t, config.AdmitPlayer(100, now))
	require.NoError(t, config.AdmitPlayer(100, now))

	err := config.AdmitPlayer(100, now)

	require.ErrorIs(t, err, ErrGameFull)
	require.Equal(t, 2, config.PlayerCount)
}

func Test_AdmitPlayer_Rejects_After_Lobby_Timeout(t *testing.T) {
	config := newLobbyConfig(t, 4)

	err := config.AdmitPlayer(100, config.CreatedAt.Add(LobbyTimeout))

	require.ErrorIs(t, err, ErrLobbyTimeout)
	require.Equal(t, StatusLobby, config.Status)
	require.Equal(t, 0, config.PlayerCount)
}

func Test_AdmitPlayer_Rejects_Wrong_Stake(t *testing.T) {
	config := newLobbyConfig(t, 4)

	err := config.AdmitPlayer(99, config.CreatedAt.Add(time.Minute))

	require.ErrorIs(t, err, ErrIncorrectStakeAmount)
}

func Test_AdmitPlayer_Rejects_Started_Game(t *testing.T) {
	config := newLobbyConfig(t, 4)
	now := config.CreatedAt.Add(time.Minute)

	require.NoError(t, config.AdmitPlayer(100, now))
	require.NoError(t, config.AdmitPlayer(100, now))
	require.NoError(t, config.Start(config.CreatorID, now))

	err := config.AdmitPlayer(100, now)

	require.ErrorIs(t, err, ErrGameAlreadyStarted)
}

func Test_Start_Requires_Creator(t *testing.T) {
	config := newLobbyConfig(t, 4)
	now := config.CreatedAt.Add(time.Minute)

	require.NoError(t, config.AdmitPlayer(100, now))
	require.NoError(t, config.AdmitPlayer(100, now))

	err := config.Start(uuid.New(), now)

	require.ErrorIs(t, err, ErrNotCreator)
	require.Equal(t, StatusLobby, config.Status)
}

func Test_Start_Requires_Min_Players(t *testing.T) {
	config := newLobbyConfig(t, 4)
	now := config.CreatedAt.Add(time.Minute)

	require.NoError(t, config.AdmitPlayer(100, now))

	err := config.Start(config.CreatorID, now)

	require.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func Test_Status_Transitions_Are_Monotonic(t *testing.T) {
	config := newLobbyConfig(t, 4)
	now := config.CreatedAt.Add(time.Minute)

	require.NoError(t, config.AdmitPlayer(100, now))
	require.NoError(t, config.AdmitPlayer(100, now))

	require.NoError(t, config.Start(config.CreatorID, now))
	require.Equal(t, StatusActive, config.Status)

	// Active games can no longer be started or cancelled.
	require.ErrorIs(t, config.Start(config.CreatorID, now), ErrGameAlreadyStarted)
	require.ErrorIs(t, config.Cancel(config.CreatorID, now), ErrGameAlreadyStarted)

	require.NoError(t, config.Finalize(now))
	require.Equal(t, StatusEnded, config.Status)

	// Ended is terminal.
	require.ErrorIs(t, config.Finalize(now), ErrGameNotActive)
	require.ErrorIs(t, config.Start(config.CreatorID, now), ErrGameAlreadyStarted)
}

func Test_Cancel_Only_From_Lobby(t *testing.T) {
	config := newLobbyConfig(t, 4)
	now := config.CreatedAt.Add(time.Minute)

	require.NoError(t, config.Cancel(config.CreatorID, now))
	require.Equal(t, StatusCancelled, config.Status)
	require.True(t, config.EndedAt.Valid)

	// Cancelled is terminal.
	require.ErrorIs(t, config.Cancel(config.CreatorID, now), ErrGameAlreadyStarted)
	require.ErrorIs(t, config.Start(config.CreatorID, now), ErrGameAlreadyStarted)
	require.ErrorIs(t, config.Finalize(now), ErrGameNotActive)
}

func Test_Cancel_Requires_Creator(t *testing.T) {
	config := newLobbyConfig(t, 4)

	err := config.Cancel(uuid.New(), config.CreatedAt.Add(time.Minute))

	require.ErrorIs(t, err, ErrNotCreator)
	require.Equal(t, StatusLobby, config.Status)
}

func Test_PrizePool_CreditStake_Accumulates(t *testing.T) {
	pool := PrizePool{GameID: uuid.New()}

	require.NoError(t, pool.CreditStake(100))
	require.NoError(t, pool.CreditStake(100))

	require.Equal(t, int64(200), pool.TotalStaked)
}

func Test_PrizePool_CreditStake_Surfaces_Overflow(t *testing.T) {
	pool := PrizePool{TotalStaked: math.MaxInt64}

	err := pool.CreditStake(1)

	require.ErrorIs(t, err, ErrArithmeticOverflow)
	require.Equal(t, int64(math.MaxInt64), pool.TotalStaked)
}

func Test_PrizePool_RecordDistribution_Surfaces_Overflow(t *testing.T) {
	pool := PrizePool{TotalDistributed: math.MaxInt64}

	err := pool.RecordDistribution(1)

	require.ErrorIs(t, err, ErrArithmeticOverflow)
}

func Test_MulChecked_Surfaces_Overflow(t *testing.T) {
	_, err := mulChecked(math.MaxInt64/2+1, 2)
	require.ErrorIs(t, err, ErrArithmeticOverflow)

	product, err := mulChecked(math.MaxInt64/2, 2)
	require.NoError(t, err)
	require.Equal(t, int64(math.MaxInt64-1), product)

	product, err = mulChecked(math.MaxInt64, 0)
	require.NoError(t, err)
	require.Equal(t, int64(0), product)
}

func Test_NewGameCode_Has_Expected_Shape(t *testing.T) {
	code := NewGameCode()

	require.Len(t, code, GameCodeLength)
	for _, c := range code {
		require.Contains(t, gameCodeAlphabet, string(c))
	}
}

func Test_NewGameCode_Varies_Between_Draws(t *testing.T) {
	codes := make(map[string]struct{})
	for i := 0; i < 32; i++ {
		codes[NewGameCode()] = struct{}{}
	}

	require.Len(t, codes, 32)
}
