package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/drawpot/drawpot/internal/modules/core"
	"github.com/drawpot/drawpot/internal/modules/game/domain"
	"github.com/drawpot/drawpot/internal/modules/wallet"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/google/uuid"
)

type CreateGameCommand struct {
	CreatorID   uuid.UUID `json:"creatorId"`
	StakeAmount int64     `json:"stakeAmount"`
	MaxPlayers  int       `json:"maxPlayers"`
}

func (c CreateGameCommand) Validate() error {
	if c.CreatorID == uuid.Nil {
		return fmt.Errorf("invalid CreatorID - '%s'", c.CreatorID)
	}

	return nil
}

type CreateGameResponse struct {
	GameID uuid.UUID `json:"gameId"`
	Code   string    `json:"code"`
}

func HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[CreateGameCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	response, err := mediator.Send[CreateGameCommand, CreateGameResponse](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	location := path.Join(r.Host, "games", response.Code)
	core.WriteCreated(w, r, location, response)
}

type CreateGameCommandHandler struct {
	db *sql.DB
}

func NewCreateGameCommandHandler(db *sql.DB) *CreateGameCommandHandler {
	return &CreateGameCommandHandler{db}
}

func (h *CreateGameCommandHandler) Handle(
	ctx context.Context,
	request CreateGameCommand,
) (CreateGameResponse, error) {
	now := time.Now().UTC()

	game, err := domain.NewGameConfig(
		request.CreatorID,
		request.StakeAmount,
		request.MaxPlayers,
		uuid.New(),
		now,
	)
	if err != nil {
		return CreateGameResponse{}, commandError(err)
	}

	txFn := func(ctx context.Context, tx *sql.Tx) error {
		if err := wallet.CreateAccount(ctx, tx, game.PoolAccountID, now); err != nil {
			return err
		}

		const gameStmt = `
			INSERT INTO
				games (id, code, creator_id, stake_amount, max_players, player_count,
					status, pool_account_id, created_at, started_at, ended_at)
			VALUES
				(:id, :code, :creator_id, :stake_amount, :max_players, :player_count,
					:status, :pool_account_id, :created_at, :started_at, :ended_at);`
		if _, err := tql.Exec(ctx, tx, gameStmt, game); err != nil {
			return err
		}

		const poolStmt = `
			INSERT INTO
				prize_pools (game_id, total_staked, total_distributed)
			VALUES
				($1, 0, 0);`
		_, err := tql.Exec(ctx, tx, poolStmt, game.ID)
		return err
	}

	// The code space is small enough that collisions happen eventually.
	// Retry with a fresh code instead of surfacing the conflict.
	const codeRetries = 3
	for attempt := 0; ; attempt++ {
		err := core.Tx(ctx, h.db, txFn)
		if err == nil {
			break
		}

		if isUniqueViolation(err) && attempt < codeRetries {
			game.Code = domain.NewGameCode()
			continue
		}

		return CreateGameResponse{}, commandError(err)
	}

	return CreateGameResponse{GameID: game.ID, Code: game.Code}, nil
}
