package domain

import "errors"

var (
	ErrGameFull              = errors.New("game is full, cannot accept more players")
	ErrGameAlreadyStarted    = errors.New("game has already started")
	ErrGameNotActive         = errors.New("game is not in active status")
	ErrGameNotEnded          = errors.New("game has not ended yet")
	ErrGameNotCancelled      = errors.New("game has not been cancelled")
	ErrNotEnoughPlayers      = errors.New("not enough players to start game")
	ErrNotCreator            = errors.New("only game creator can perform this action")
	ErrNotCurrentDrawer      = errors.New("only current drawer can draw")
	ErrAlreadyGuessed        = errors.New("player has already guessed this round")
	ErrIncorrectStakeAmount  = errors.New("incorrect stake amount")
	ErrPlayerAlreadyJoined   = errors.New("player already joined this game")
	ErrPlayerNotInGame       = errors.New("player has not joined this game")
	ErrPlayerInactive        = errors.New("player is not active in this game")
	ErrInvalidRank           = errors.New("no ranking exists for rank")
	ErrInvalidPlayerCount    = errors.New("invalid player count")
	ErrLobbyTimeout          = errors.New("lobby timeout exceeded")
	ErrClaimDeadlineExceeded = errors.New("claim deadline exceeded")
	ErrPayoutAlreadyClaimed  = errors.New("payout already claimed")
	ErrPayoutAlreadyExists   = errors.New("payout already exists for player")
	ErrPayoutNotFound        = errors.New("no payout exists for player")
	ErrInvalidGameCode       = errors.New("invalid game code")
	ErrRoundOver             = errors.New("round is over")
	ErrCannotGuessAsDrawer   = errors.New("cannot guess as drawer")
	ErrRoundLogFull          = errors.New("round log capacity exceeded")
	ErrArithmeticOverflow    = errors.New("arithmetic overflow")
)
