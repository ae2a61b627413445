// Package commands holds one file per game operation: the command, its
// validation, the HTTP handler, and the mediator command handler with its
// SQL. Read-modify-write operations run serializable so concurrent calls
// never act on a stale status or player count.
package commands

import (
	"context"
	"database/sql"
	"errors"

	"github.com/drawpot/drawpot/internal/modules/core"
	"github.com/drawpot/drawpot/internal/modules/game/domain"
	walletdomain "github.com/drawpot/drawpot/internal/modules/wallet/domain"

	"github.com/eskrenkovic/tql"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// commandError maps a domain error onto the HTTP status the operation
// reports. Anything unrecognized is a 500.
func commandError(err error) core.CommandError {
	if commandErr, ok := err.(core.CommandError); ok {
		return commandErr
	}

	switch {
	case errors.Is(err, domain.ErrInvalidGameCode),
		errors.Is(err, domain.ErrPlayerNotInGame),
		errors.Is(err, domain.ErrPayoutNotFound),
		errors.Is(err, domain.ErrInvalidRank),
		errors.Is(err, walletdomain.ErrAccountNotFound):
		return core.NewCommandError(404, err)

	case errors.Is(err, domain.ErrNotCreator),
		errors.Is(err, domain.ErrNotCurrentDrawer),
		errors.Is(err, domain.ErrCannotGuessAsDrawer):
		return core.NewCommandError(403, err)

	case errors.Is(err, domain.ErrInvalidPlayerCount),
		errors.Is(err, domain.ErrIncorrectStakeAmount):
		return core.NewCommandError(400, err)

	case errors.Is(err, domain.ErrGameFull),
		errors.Is(err, domain.ErrGameAlreadyStarted),
		errors.Is(err, domain.ErrGameNotActive),
		errors.Is(err, domain.ErrGameNotEnded),
		errors.Is(err, domain.ErrGameNotCancelled),
		errors.Is(err, domain.ErrNotEnoughPlayers),
		errors.Is(err, domain.ErrAlreadyGuessed),
		errors.Is(err, domain.ErrPlayerAlreadyJoined),
		errors.Is(err, domain.ErrPlayerInactive),
		errors.Is(err, domain.ErrLobbyTimeout),
		errors.Is(err, domain.ErrClaimDeadlineExceeded),
		errors.Is(err, domain.ErrPayoutAlreadyClaimed),
		errors.Is(err, domain.ErrPayoutAlreadyExists),
		errors.Is(err, domain.ErrRoundOver),
		errors.Is(err, domain.ErrRoundLogFull),
		errors.Is(err, walletdomain.ErrInsufficientFunds):
		return core.NewCommandError(409, err)

	default:
		return core.NewCommandError(500, err)
	}
}

// isUniqueViolation reports whether err is a Postgres duplicate-key error.
// Duplicate joins and duplicate payout creation surface this way - the
// composite primary keys are what make those operations exclusive.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func gameByCodeForUpdate(ctx context.Context, tx *sql.Tx, code string) (domain.GameConfig, error) {
	const query = `
		SELECT
			id, code, creator_id, stake_amount, max_players, player_count,
			status, pool_account_id, created_at, started_at, ended_at
		FROM
			games
		WHERE
			code = $1
		FOR UPDATE;`

	game, err := tql.QuerySingle[domain.GameConfig](ctx, tx, query, code)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.GameConfig{}, domain.ErrInvalidGameCode
	case err != nil:
		return domain.GameConfig{}, err
	}

	return game, nil
}

func updateGameStatus(ctx context.Context, tx *sql.Tx, game domain.GameConfig) error {
	const stmt = `
		UPDATE
			games
		SET
			player_count = :player_count,
			status = :status,
			started_at = :started_at,
			ended_at = :ended_at
		WHERE
			id = :id;`
	_, err := tql.Exec(ctx, tx, stmt, game)
	return err
}

func poolForUpdate(ctx context.Context, tx *sql.Tx, gameID uuid.UUID) (domain.PrizePool, error) {
	const query = `
		SELECT
			game_id, total_staked, total_distributed
		FROM
			prize_pools
		WHERE
			game_id = $1
		FOR UPDATE;`
	return tql.QuerySingle[domain.PrizePool](ctx, tx, query, gameID)
}

func updatePool(ctx context.Context, tx *sql.Tx, pool domain.PrizePool) error {
	const stmt = `
		UPDATE
			prize_pools
		SET
			total_staked = :total_staked,
			total_distributed = :total_distributed
		WHERE
			game_id = :game_id;`
	_, err := tql.Exec(ctx, tx, stmt, pool)
	return err
}

func roundForUpdate(ctx context.Context, tx *sql.Tx, gameID uuid.UUID) (domain.RoundState, error) {
	const query = `
		SELECT
			game_id, current_word, drawer_index, round_number,
			round_started_at, round_duration, time_remaining
		FROM
			round_states
		WHERE
			game_id = $1
		FOR UPDATE;`

	round, err := tql.QuerySingle[domain.RoundState](ctx, tx, query, gameID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.RoundState{}, domain.ErrGameNotActive
	case err != nil:
		return domain.RoundState{}, err
	}

	return round, nil
}

func updateRound(ctx context.Context, tx *sql.Tx, round domain.RoundState) error {
	const stmt = `
		UPDATE
			round_states
		SET
			current_word = :current_word,
			drawer_index = :drawer_index,
			round_number = :round_number,
			round_started_at = :round_started_at,
			time_remaining = :time_remaining
		WHERE
			game_id = :game_id;`
	_, err := tql.Exec(ctx, tx, stmt, round)
	return err
}

func playerForUpdate(ctx context.Context, tx *sql.Tx, gameID, playerID uuid.UUID) (domain.PlayerState, error) {
	const query = `
		SELECT
			game_id, player_id, position, score,
			has_guessed_current_round, is_active, joined_at
		FROM
			player_states
		WHERE
			game_id = $1 AND player_id = $2
		FOR UPDATE;`

	player, err := tql.QuerySingle[domain.PlayerState](ctx, tx, query, gameID, playerID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.PlayerState{}, domain.ErrPlayerNotInGame
	case err != nil:
		return domain.PlayerState{}, err
	}

	return player, nil
}

func playerAtPosition(ctx context.Context, tx *sql.Tx, gameID uuid.UUID, position int) (domain.PlayerState, error) {
	const query = `
		SELECT
			game_id, player_id, position, score,
			has_guessed_current_round, is_active, joined_at
		FROM
			player_states
		WHERE
			game_id = $1 AND position = $2;`

	player, err := tql.QuerySingle[domain.PlayerState](ctx, tx, query, gameID, position)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.PlayerState{}, domain.ErrNotCurrentDrawer
	case err != nil:
		return domain.PlayerState{}, err
	}

	return player, nil
}
