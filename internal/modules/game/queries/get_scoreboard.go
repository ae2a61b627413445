package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/drawpot/drawpot/internal/modules/core"
	"github.com/drawpot/drawpot/internal/modules/game/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type GetScoreboardQuery struct {
	Code string
}

func (q GetScoreboardQuery) Validate() error {
	if q.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", q.Code)
	}

	return nil
}

type ScoreboardEntry struct {
	Rank     int       `json:"rank"`
	PlayerID uuid.UUID `json:"playerId"`
	Score    int64     `json:"score"`
	Amount   int64     `json:"amount"`
	Claimed  bool      `json:"claimed"`
}

type ScoreboardResponse struct {
	Code    string            `json:"code"`
	Entries []ScoreboardEntry `json:"entries"`
}

func HandleGetScoreboard(w http.ResponseWriter, r *http.Request) {
	query := GetScoreboardQuery{Code: chi.URLParam(r, "code")}

	response, err := mediator.Send[GetScoreboardQuery, ScoreboardResponse](r.Context(), query)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetScoreboardQueryHandler struct {
	db *sql.DB
}

func NewGetScoreboardQueryHandler(db *sql.DB) *GetScoreboardQueryHandler {
	return &GetScoreboardQueryHandler{db}
}

type scoreboardRow struct {
	Rank     int           `db:"rank"`
	PlayerID uuid.UUID     `db:"player_id"`
	Score    int64         `db:"score"`
	Amount   sql.NullInt64 `db:"amount"`
	Claimed  sql.NullBool  `db:"claimed"`
}

// Handle returns the post-finalize standings: rankings joined with whatever
// payouts exist so far.
func (h *GetScoreboardQueryHandler) Handle(
	ctx context.Context,
	request GetScoreboardQuery,
) (ScoreboardResponse, error) {
	const gameQuery = `
		SELECT
			id
		FROM
			games
		WHERE
			code = $1;`

	gameID, err := tql.QuerySingle[gameIDRow](ctx, h.db, gameQuery, request.Code)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ScoreboardResponse{}, core.NewCommandError(404, domain.ErrInvalidGameCode)
	case err != nil:
		return ScoreboardResponse{}, core.NewCommandError(500, err)
	}

	const rowsQuery = `
		SELECT
			r.rank, r.player_id, r.score, p.amount, p.claimed
		FROM
			final_rankings r
		LEFT JOIN
			payouts p ON p.game_id = r.game_id AND p.player_id = r.player_id
		WHERE
			r.game_id = $1
		ORDER BY
			r.rank;`

	rows, err := tql.Query[scoreboardRow](ctx, h.db, rowsQuery, gameID.ID)
	if err != nil {
		return ScoreboardResponse{}, core.NewCommandError(500, err)
	}

	return ScoreboardResponse{
		Code: request.Code,
		Entries: core.Map(rows, func(row scoreboardRow) ScoreboardEntry {
			return ScoreboardEntry{
				Rank:     row.Rank,
				PlayerID: row.PlayerID,
				Score:    row.Score,
				Amount:   row.Amount.Int64,
				Claimed:  row.Claimed.Bool,
			}
		}),
	}, nil
}
