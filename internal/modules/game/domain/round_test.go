package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_NewRoundState_Starts_With_First_Drawer(t *testing.T) {
	now := time.Now()

	round := NewRoundState(uuid.New(), now)

	require.Equal(t, 0, round.DrawerIndex)
	require.Equal(t, 0, round.RoundNumber)
	require.Empty(t, round.CurrentWord)
	require.Equal(t, int64(80), round.RoundDuration)
	require.Equal(t, round.RoundDuration, round.TimeRemaining)
}

func Test_Tick_Counts_Down(t *testing.T) {
	now := time.Now()
	round := NewRoundState(uuid.New(), now)

	round.Tick(now.Add(30 * time.Second))

	require.Equal(t, int64(50), round.TimeRemaining)
}

func Test_Tick_Clamps_At_Zero(t *testing.T) {
	now := time.Now()
	round := NewRoundState(uuid.New(), now)

	round.Tick(now.Add(2 * RoundDuration))

	require.Equal(t, int64(0), round.TimeRemaining)
}

func Test_Tick_Is_Idempotent(t *testing.T) {
	now := time.Now()
	round := NewRoundState(uuid.New(), now)
	at := now.Add(10 * time.Second)

	round.Tick(at)
	first := round.TimeRemaining
	round.Tick(at)

	require.Equal(t, first, round.TimeRemaining)
}

func Test_Advance_Moves_To_Next_Drawer(t *testing.T) {
	now := time.Now()
	round := NewRoundState(uuid.New(), now)
	round.TimeRemaining = 0

	later := now.Add(90 * time.Second)
	ended := round.Advance("whale", 4, later)

	require.False(t, ended)
	require.Equal(t, 1, round.DrawerIndex)
	require.Equal(t, 1, round.RoundNumber)
	require.Equal(t, "whale", round.CurrentWord)
	require.Equal(t, later, round.RoundStartedAt)
	require.Equal(t, round.RoundDuration, round.TimeRemaining)
}

func Test_Advance_Signals_Ready_To_End_After_Last_Drawer(t *testing.T) {
	now := time.Now()
	round := NewRoundState(uuid.New(), now)

	require.False(t, round.Advance("a", 3, now))
	require.False(t, round.Advance("b", 3, now))

	before := round
	ended := round.Advance("", 3, now.Add(time.Minute))

	require.True(t, ended)
	// Ready-to-end must not mutate the round state.
	require.Equal(t, before, round)
}

func Test_Advance_Cycles_Every_Drawer_Exactly_Once(t *testing.T) {
	now := time.Now()
	round := NewRoundState(uuid.New(), now)

	const players = 4

	drawers := []int{round.DrawerIndex}
	for !round.Advance("word", players, now) {
		drawers = append(drawers, round.DrawerIndex)
	}

	require.Equal(t, []int{0, 1, 2, 3}, drawers)
	require.Equal(t, players-1, round.RoundNumber)
}

func Test_WordMatches_Is_Case_Insensitive_And_Trimmed(t *testing.T) {
	round := NewRoundState(uuid.New(), time.Now())
	round.CurrentWord = "Whale"

	require.True(t, round.WordMatches("whale"))
	require.True(t, round.WordMatches("  WHALE "))
	require.False(t, round.WordMatches("whales"))
	require.False(t, round.WordMatches(""))
}

func Test_WordMatches_Never_Matches_Unset_Word(t *testing.T) {
	round := NewRoundState(uuid.New(), time.Now())

	require.False(t, round.WordMatches(""))
	require.False(t, round.WordMatches("   "))
}
