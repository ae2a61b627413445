package commands

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/drawpot/drawpot/internal/modules/core"
	"github.com/drawpot/drawpot/internal/modules/game/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type AddStrokeCommand struct {
	Code     string    `json:"-"`
	DrawerID uuid.UUID `json:"drawerId"`
	Points   []int64   `json:"points"` // packed coordinates [x1, y1, x2, y2, ...]
	Color    int64     `json:"color"`
	Width    int       `json:"width"`
}

func (c AddStrokeCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.DrawerID == uuid.Nil {
		return fmt.Errorf("invalid DrawerID - '%s'", c.DrawerID)
	}

	if len(c.Points) == 0 || len(c.Points)%2 != 0 {
		return fmt.Errorf("invalid Points - expected non-empty even-length coordinate list, got %d", len(c.Points))
	}

	if c.Width < domain.MinStrokeWidth || c.Width > domain.MaxStrokeWidth {
		return fmt.Errorf("invalid Width - '%d'", c.Width)
	}

	if c.Color < 0 || c.Color > math.MaxUint32 {
		return fmt.Errorf("invalid Color - '%d'", c.Color)
	}

	return nil
}

func HandleAddStroke(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[AddStrokeCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}
	command.Code = chi.URLParam(r, "code")

	if _, err := mediator.Send[AddStrokeCommand, core.Unit](r.Context(), command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type AddStrokeCommandHandler struct {
	db *sql.DB
}

func NewAddStrokeCommandHandler(db *sql.DB) *AddStrokeCommandHandler {
	return &AddStrokeCommandHandler{db}
}

// Handle appends a stroke to the current round's canvas log. Only the
// current drawer may draw, and only while the round clock is running.
func (h *AddStrokeCommandHandler) Handle(ctx context.Context, request AddStrokeCommand) (core.Unit, error) {
	now := time.Now().UTC()

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

		drawer, err := playerAtPosition(ctx, tx, game.ID, round.DrawerIndex)
		if err != nil {
			return err
		}

		if drawer.PlayerID != request.DrawerID {
			return domain.ErrNotCurrentDrawer
		}

		if round.TimeRemaining <= 0 {
			return domain.ErrRoundOver
		}

		count, err := roundLogCount(ctx, tx, "canvas_strokes", game.ID, round.RoundNumber)
		if err != nil {
			return err
		}

		if count >= domain.MaxRoundLogEntries {
			return domain.ErrRoundLogFull
		}

		stroke := domain.Stroke{
			GameID:      game.ID,
			RoundNumber: round.RoundNumber,
			DrawerID:    request.DrawerID,
			Points:      pq.Int64Array(request.Points),
			Color:       request.Color,
			Width:       request.Width,
			CreatedAt:   now,
		}

		const stmt = `
			INSERT INTO
				canvas_strokes (game_id, round_number, drawer_id, points, color, width, created_at)
			VALUES
				(:game_id, :round_number, :drawer_id, :points, :color, :width, :created_at);`
		_, err = tql.Exec(ctx, tx, stmt, stroke)
		return err
	}

	err := core.Tx(ctx, h.db, txFn, core.WithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return core.Unit{}, commandError(err)
	}

	return core.Unit{}, nil
}

type rowCount struct {
	Count int `db:"count"`
}

func roundLogCount(ctx context.Context, tx *sql.Tx, table string, gameID uuid.UUID, roundNumber int) (int, error) {
	query := fmt.Sprintf(`
		SELECT
			count(*) AS count
		FROM
			%s
		WHERE
			game_id = $1 AND round_number = $2;`, table)

	count, err := tql.QuerySingle[rowCount](ctx, tx, query, gameID, roundNumber)
	if err != nil {
		return 0, err
	}

	return count.Count, nil
}
