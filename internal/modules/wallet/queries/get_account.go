package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/drawpot/drawpot/internal/modules/core"
	"github.com/drawpot/drawpot/internal/modules/wallet/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type GetAccountQuery struct {
	AccountID uuid.UUID
}

func (q GetAccountQuery) Validate() error {
	if q.AccountID == uuid.Nil {
		return fmt.Errorf("invalid AccountID - '%s'", q.AccountID)
	}

	return nil
}

type AccountResponse struct {
	AccountID uuid.UUID `json:"accountId"`
	Balance   int64     `json:"balance"`
}

func HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}

	response, err := mediator.Send[GetAccountQuery, AccountResponse](
		r.Context(),
		GetAccountQuery{AccountID: accountID},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetAccountQueryHandler struct {
	db *sql.DB
}

func NewGetAccountQueryHandler(db *sql.DB) *GetAccountQueryHandler {
	return &GetAccountQueryHandler{db}
}

func (h *GetAccountQueryHandler) Handle(ctx context.Context, request GetAccountQuery) (AccountResponse, error) {
	const query = `
		SELECT
			id, balance, created_at
		FROM
			wallet_accounts
		WHERE
			id = $1;`

	account, err := tql.QuerySingle[domain.Account](ctx, h.db, query, request.AccountID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return AccountResponse{}, core.NewCommandError(404, domain.ErrAccountNotFound)
	case err != nil:
		return AccountResponse{}, core.NewCommandError(500, err)
	}

	return AccountResponse{AccountID: account.ID, Balance: account.Balance}, nil
}
