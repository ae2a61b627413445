package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/drawpot/drawpot/internal/modules/core"
	"github.com/drawpot/drawpot/internal/modules/game/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
)

// FinalizeGameCommand ends an active game with the score list supplied by
// the finalize authority. Scores are taken as given, not re-derived from the
// guess log.
type FinalizeGameCommand struct {
	Code   string               `json:"-"`
	Scores []domain.PlayerScore `json:"scores"`
}

func (c FinalizeGameCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if len(c.Scores) == 0 {
		return fmt.Errorf("invalid Scores - empty")
	}

	return nil
}

type FinalizeGameResponse struct {
	Rankings []domain.PlayerScore `json:"rankings"`
}

func HandleFinalizeGame(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[FinalizeGameCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}
	command.Code = chi.URLParam(r, "code")

	response, err := mediator.Send[FinalizeGameCommand, FinalizeGameResponse](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type FinalizeGameCommandHandler struct {
	db *sql.DB
}

func NewFinalizeGameCommandHandler(db *sql.DB) *FinalizeGameCommandHandler {
	return &FinalizeGameCommandHandler{db}
}

// Handle ends the game and records the final rankings. Payout records are
// created in separate per-rank calls to keep each transaction small.
func (h *FinalizeGameCommandHandler) Handle(
	ctx context.Context,
	request FinalizeGameCommand,
) (FinalizeGameResponse, error) {
	now := time.Now().UTC()

	ranked := domain.RankScores(request.Scores)

	txFn := func(ctx context.Context, tx *sql.Tx) error {
		game, err := gameByCodeForUpdate(ctx, tx, request.Code)
		if err != nil {
			return err
		}

		if err := game.Finalize(now); err != nil {
			return err
		}

		const rankingStmt = `
			INSERT INTO
				final_rankings (game_id, rank, player_id, score)
			VALUES
				($1, $2, $3, $4);`
		for rank, score := range ranked {
			if _, err := tql.Exec(ctx, tx, rankingStmt, game.ID, rank, score.PlayerID, score.Score); err != nil {
				return err
			}
		}

		// The round machine's job is done; settlement owns the game now.
		const roundStmt = `
			DELETE FROM
				round_states
			WHERE
				game_id = $1;`
		if _, err := tql.Exec(ctx, tx, roundStmt, game.ID); err != nil {
			return err
		}

		return updateGameStatus(ctx, tx, game)
	}

	err := core.Tx(ctx, h.db, txFn, core.WithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return FinalizeGameResponse{}, commandError(err)
	}

	return FinalizeGameResponse{Rankings: ranked}, nil
}
