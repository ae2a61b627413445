package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/drawpot/drawpot/internal/modules/core"
	"github.com/drawpot/drawpot/internal/modules/game/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type GetCanvasQuery struct {
	Code        string
	RoundNumber int
}

func (q GetCanvasQuery) Validate() error {
	if q.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", q.Code)
	}

	if q.RoundNumber < 0 {
		return fmt.Errorf("invalid RoundNumber - '%d'", q.RoundNumber)
	}

	return nil
}

type CanvasStroke struct {
	DrawerID uuid.UUID `json:"drawerId"`
	Points   []int64   `json:"points"`
	Color    int64     `json:"color"`
	Width    int       `json:"width"`
}

type CanvasResponse struct {
	RoundNumber int            `json:"roundNumber"`
	Strokes     []CanvasStroke `json:"strokes"`
}

func HandleGetCanvas(w http.ResponseWriter, r *http.Request) {
	roundNumber, err := strconv.Atoi(chi.URLParam(r, "round"))
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	query := GetCanvasQuery{
		Code:        chi.URLParam(r, "code"),
		RoundNumber: roundNumber,
	}

	response, err := mediator.Send[GetCanvasQuery, CanvasResponse](r.Context(), query)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetCanvasQueryHandler struct {
	db *sql.DB
}

func NewGetCanvasQueryHandler(db *sql.DB) *GetCanvasQueryHandler {
	return &GetCanvasQueryHandler{db}
}

func (h *GetCanvasQueryHandler) Handle(ctx context.Context, request GetCanvasQuery) (CanvasResponse, error) {
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
		return CanvasResponse{}, core.NewCommandError(404, domain.ErrInvalidGameCode)
	case err != nil:
		return CanvasResponse{}, core.NewCommandError(500, err)
	}

	const strokesQuery = `
		SELECT
			id, game_id, round_number, drawer_id, points, color, width, created_at
		FROM
			canvas_strokes
		WHERE
			game_id = $1 AND round_number = $2
		ORDER BY
			id;`

	strokes, err := tql.Query[domain.Stroke](ctx, h.db, strokesQuery, gameID.ID, request.RoundNumber)
	if err != nil {
		return CanvasResponse{}, core.NewCommandError(500, err)
	}

	return CanvasResponse{
		RoundNumber: request.RoundNumber,
		Strokes: core.Map(strokes, func(s domain.Stroke) CanvasStroke {
			return CanvasStroke{
				DrawerID: s.DrawerID,
				Points:   []int64(s.Points),
				Color:    s.Color,
				Width:    s.Width,
			}
		}),
	}, nil
}

type gameIDRow struct {
	ID uuid.UUID `db:"id"`
}
