package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/drawpot/drawpot/internal/modules/core"
	"github.com/drawpot/drawpot/internal/modules/game/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type SubmitGuessCommand struct {
	Code     string    `json:"-"`
	PlayerID uuid.UUID `json:"playerId"`
	Word     string    `json:"word"`
}

func (c SubmitGuessCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.PlayerID == uuid.Nil {
		return fmt.Errorf("invalid PlayerID - '%s'", c.PlayerID)
	}

	if strings.TrimSpace(c.Word) == "" {
		return fmt.Errorf("invalid Word - empty")
	}

	return nil
}

type SubmitGuessResponse struct {
	Correct       bool  `json:"correct"`
	PointsAwarded int64 `json:"pointsAwarded"`
}

func HandleSubmitGuess(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[SubmitGuessCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}
	command.Code = chi.URLParam(r, "code")

	response, err := mediator.Send[SubmitGuessCommand, SubmitGuessResponse](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type SubmitGuessCommandHandler struct {
	db *sql.DB
}

func NewSubmitGuessCommandHandler(db *sql.DB) *SubmitGuessCommandHandler {
	return &SubmitGuessCommandHandler{db}
}

// Handle scores a guess against the round's secret word. A wrong guess
// records a zero-point log entry and leaves the guessed flag clear, so the
// player may keep trying until the round ends.
func (h *SubmitGuessCommandHandler) Handle(
	ctx context.Context,
	request SubmitGuessCommand,
) (SubmitGuessResponse, error) {
	now := time.Now().UTC()

	var response SubmitGuessResponse

	txFn := func(ctx context.Context, tx *sql.Tx) error {
		game, err := gameByCodeForUpdate(ctx, tx, request.Code)
		if err != nil {
			return err
		}

		if game.Status != domain.StatusActive {
			return domain.ErrGameNotActive
		}

		round, err := roundForUpdate(ctx, tx, game.ID)
		if err != nil {
			return err
		}

		player, err := playerForUpdate(ctx, tx, game.ID, request.PlayerID)
		if err != nil {
			return err
		}

		if !player.IsActive {
			return domain.ErrPlayerInactive
		}

		if player.HasGuessedCurrentRound {
			return domain.ErrAlreadyGuessed
		}

		if player.Position == round.DrawerIndex {
			return domain.ErrCannotGuessAsDrawer
		}

		if round.TimeRemaining <= 0 {
			return domain.ErrRoundOver
		}

		count, err := roundLogCount(ctx, tx, "guess_log", game.ID, round.RoundNumber)
		if err != nil {
			return err
		}

		if count >= domain.MaxRoundLogEntries {
			return domain.ErrRoundLogFull
		}

		correct := round.WordMatches(request.Word)

		var points int64
		if correct {
			points = domain.GuessPoints(
				time.Duration(round.RoundDuration)*time.Second,
				round.Elapsed(now),
			)

			if err := player.AwardPoints(points); err != nil {
				return err
			}

			const playerStmt = `
				UPDATE
					player_states
				SET
					score = :score,
					has_guessed_current_round = :has_guessed_current_round
				WHERE
					game_id = :game_id AND player_id = :player_id;`
			if _, err := tql.Exec(ctx, tx, playerStmt, player); err != nil {
				return err
			}
		}

		record := domain.GuessRecord{
			GameID:        game.ID,
			RoundNumber:   round.RoundNumber,
			PlayerID:      request.PlayerID,
			Word:          request.Word,
			Correct:       correct,
			PointsAwarded: points,
			CreatedAt:     now,
		}

		const guessStmt = `
			INSERT INTO
				guess_log (game_id, round_number, player_id, word, correct, points_awarded, created_at)
			VALUES
				(:game_id, :round_number, :player_id, :word, :correct, :points_awarded, :created_at);`
		if _, err := tql.Exec(ctx, tx, guessStmt, record); err != nil {
			return err
		}

		response = SubmitGuessResponse{Correct: correct, PointsAwarded: points}
		return nil
	}

	err := core.Tx(ctx, h.db, txFn, core.WithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return SubmitGuessResponse{}, commandError(err)
	}

	return response, nil
}
