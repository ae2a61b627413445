package server

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"

	"github.com/drawpot/drawpot/internal/config"
	"github.com/drawpot/drawpot/internal/modules/core"
	gamecommands "github.com/drawpot/drawpot/internal/modules/game/commands"
	gamequeries "github.com/drawpot/drawpot/internal/modules/game/queries"
	walletcommands "github.com/drawpot/drawpot/internal/modules/wallet/commands"
	walletqueries "github.com/drawpot/drawpot/internal/modules/wallet/queries"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/migrate-go"
	"github.com/go-chi/chi"
	_ "github.com/lib/pq"
)

type Server interface {
	Start() error
	Stop() error
}

var _ Server = &HTTPServer{}

// HTTPServer acts as the composition root for the application.
type HTTPServer struct {
	server *http.Server
}

func NewHTTPServer(config config.Config) (Server, error) {
	baseCtx := context.Background()

	db, err := sql.Open("postgres", config.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := migrate.Run(baseCtx, db, config.MigrationsPath); err != nil {
		return nil, err
	}

	requestLoggingBehavior := core.RequestLoggingBehavior{Logger: config.Logger}
	handlerErrorLoggingBehavior := core.HandlerErrorLoggingBehavior{Logger: config.Logger}
	requestValidationBehavior := core.RequestValidationBehavior{}

	mediator.RegisterPipelineBehavior(&requestLoggingBehavior)
	mediator.RegisterPipelineBehavior(&handlerErrorLoggingBehavior)
	mediator.RegisterPipelineBehavior(&requestValidationBehavior)

	// handler registration

	// game

	createGameHandler := gamecommands.NewCreateGameCommandHandler(db)
	err = mediator.RegisterRequestHandler[gamecommands.CreateGameCommand, gamecommands.CreateGameResponse](
		createGameHandler,
	)
	if err != nil {
		return nil, err
	}

	joinGameHandler := gamecommands.NewJoinGameCommandHandler(db)
	err = mediator.RegisterRequestHandler[gamecommands.JoinGameCommand, core.Unit](
		joinGameHandler,
	)
	if err != nil {
		return nil, err
	}

	cancelGameHandler := gamecommands.NewCancelGameCommandHandler(db)
	err = mediator.RegisterRequestHandler[gamecommands.CancelGameCommand, core.Unit](
		cancelGameHandler,
	)
	if err != nil {
		return nil, err
	}

	refundStakeHandler := gamecommands.NewRefundStakeCommandHandler(db)
	err = mediator.RegisterRequestHandler[gamecommands.RefundStakeCommand, core.Unit](
		refundStakeHandler,
	)
	if err != nil {
		return nil, err
	}

	startGameHandler := gamecommands.NewStartGameCommandHandler(db)
	err = mediator.RegisterRequestHandler[gamecommands.StartGameCommand, gamecommands.StartGameResponse](
		startGameHandler,
	)
	if err != nil {
		return nil, err
	}

	tickHandler := gamecommands.NewTickCommandHandler(db)
	err = mediator.RegisterRequestHandler[gamecommands.TickCommand, gamecommands.TickResponse](
		tickHandler,
	)
	if err != nil {
		return nil, err
	}

	addStrokeHandler := gamecommands.NewAddStrokeCommandHandler(db)
	err = mediator.RegisterRequestHandler[gamecommands.AddStrokeCommand, core.Unit](
		addStrokeHandler,
	)
	if err != nil {
		return nil, err
	}

	submitGuessHandler := gamecommands.NewSubmitGuessCommandHandler(db)
	err = mediator.RegisterRequestHandler[gamecommands.SubmitGuessCommand, gamecommands.SubmitGuessResponse](
		submitGuessHandler,
	)
	if err != nil {
		return nil, err
	}

	endRoundHandler := gamecommands.NewEndRoundCommandHandler(db)
	err = mediator.RegisterRequestHandler[gamecommands.EndRoundCommand, gamecommands.EndRoundResponse](
		endRoundHandler,
	)
	if err != nil {
		return nil, err
	}

	finalizeGameHandler := gamecommands.NewFinalizeGameCommandHandler(db)
	err = mediator.RegisterRequestHandler[gamecommands.FinalizeGameCommand, gamecommands.FinalizeGameResponse](
		finalizeGameHandler,
	)
	if err != nil {
		return nil, err
	}

	createPayoutHandler := gamecommands.NewCreatePayoutCommandHandler(db)
	err = mediator.RegisterRequestHandler[gamecommands.CreatePayoutCommand, gamecommands.CreatePayoutResponse](
		createPayoutHandler,
	)
	if err != nil {
		return nil, err
	}

	claimPayoutHandler := gamecommands.NewClaimPayoutCommandHandler(db)
	err = mediator.RegisterRequestHandler[gamecommands.ClaimPayoutCommand, gamecommands.ClaimPayoutResponse](
		claimPayoutHandler,
	)
	if err != nil {
		return nil, err
	}

	getGameHandler := gamequeries.NewGetGameQueryHandler(db)
	err = mediator.RegisterRequestHandler[gamequeries.GetGameQuery, gamequeries.GameResponse](
		getGameHandler,
	)
	if err != nil {
		return nil, err
	}

	getCanvasHandler := gamequeries.NewGetCanvasQueryHandler(db)
	err = mediator.RegisterRequestHandler[gamequeries.GetCanvasQuery, gamequeries.CanvasResponse](
		getCanvasHandler,
	)
	if err != nil {
		return nil, err
	}

	getScoreboardHandler := gamequeries.NewGetScoreboardQueryHandler(db)
	err = mediator.RegisterRequestHandler[gamequeries.GetScoreboardQuery, gamequeries.ScoreboardResponse](
		getScoreboardHandler,
	)
	if err != nil {
		return nil, err
	}

	// wallet

	depositHandler := walletcommands.NewDepositCommandHandler(db)
	err = mediator.RegisterRequestHandler[walletcommands.DepositCommand, core.Unit](
		depositHandler,
	)
	if err != nil {
		return nil, err
	}

	getAccountHandler := walletqueries.NewGetAccountQueryHandler(db)
	err = mediator.RegisterRequestHandler[walletqueries.GetAccountQuery, walletqueries.AccountResponse](
		getAccountHandler,
	)
	if err != nil {
		return nil, err
	}

	// http

	r := chi.NewRouter()

	r.Use(core.CorrelationIDHTTPMiddleware)

	r.Post("/games", gamecommands.HandleCreateGame)
	r.Get("/games/{code}", gamequeries.HandleGetGame)

	r.Put("/games/{code}/actions/join", gamecommands.HandleJoinGame)
	r.Put("/games/{code}/actions/cancel", gamecommands.HandleCancelGame)
	r.Put("/games/{code}/actions/start", gamecommands.HandleStartGame)
	r.Put("/games/{code}/actions/tick", gamecommands.HandleTick)
	r.Put("/games/{code}/actions/end-round", gamecommands.HandleEndRound)
	r.Put("/games/{code}/actions/finalize", gamecommands.HandleFinalizeGame)

	r.Post("/games/{code}/refunds", gamecommands.HandleRefundStake)
	r.Post("/games/{code}/strokes", gamecommands.HandleAddStroke)
	r.Post("/games/{code}/guesses", gamecommands.HandleSubmitGuess)
	r.Post("/games/{code}/payouts", gamecommands.HandleCreatePayout)
	r.Put("/games/{code}/payouts/actions/claim", gamecommands.HandleClaimPayout)

	r.Get("/games/{code}/rounds/{round}/canvas", gamequeries.HandleGetCanvas)
	r.Get("/games/{code}/scoreboard", gamequeries.HandleGetScoreboard)

	r.Post("/wallet/accounts/{id}/deposits", walletcommands.HandleDeposit)
	r.Get("/wallet/accounts/{id}", walletqueries.HandleGetAccount)

	server := http.Server{
		Addr:    net.JoinHostPort("", fmt.Sprintf("%d", config.Port)),
		Handler: r,
		BaseContext: func(net.Listener) context.Context {
			return baseCtx
		},
	}

	return &HTTPServer{server: &server}, nil
}

func (s *HTTPServer) Start() error {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop() error {
	return s.server.Close()
}
