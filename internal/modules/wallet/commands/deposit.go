package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/drawpot/drawpot/internal/modules/core"
	"github.com/drawpot/drawpot/internal/modules/wallet"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type DepositCommand struct {
	AccountID uuid.UUID `json:"accountId"`
	Amount    int64     `json:"amount"`
	Reference string    `json:"reference"`
}

func (c DepositCommand) Validate() error {
	if c.AccountID == uuid.Nil {
		return fmt.Errorf("invalid AccountID - '%s'", c.AccountID)
	}

	if c.Amount <= 0 {
		return fmt.Errorf("invalid Amount - '%d'", c.Amount)
	}

	return nil
}

func HandleDeposit(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[DepositCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	accountID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}
	command.AccountID = accountID

	if _, err := mediator.Send[DepositCommand, core.Unit](r.Context(), command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type DepositCommandHandler struct {
	db *sql.DB
}

func NewDepositCommandHandler(db *sql.DB) *DepositCommandHandler {
	return &DepositCommandHandler{db}
}

func (h *DepositCommandHandler) Handle(ctx context.Context, request DepositCommand) (core.Unit, error) {
	reference := request.Reference
	if reference == "" {
		reference = "deposit"
	}

	txFn := func(ctx context.Context, tx *sql.Tx) error {
		return wallet.Deposit(ctx, tx, request.AccountID, request.Amount, reference, time.Now().UTC())
	}

	if err := core.Tx(ctx, h.db, txFn, core.WithIsolationLevel(sql.LevelSerializable)); err != nil {
		return core.Unit{}, core.NewCommandError(500, err)
	}

	return core.Unit{}, nil
}
