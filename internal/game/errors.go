package game

import "errors"

// Intent failures. All are local to the offending intent: no room state is
// mutated when one of these is returned. ErrOutOfTurn is never surfaced to
// the client; the dispatcher drops the intent silently to tolerate the
// benign race between a client's rendered turn and server truth.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrNotHost            = errors.New("only the host can start the game")
	ErrNotEnoughPlayers   = errors.New("at least 2 players required to start")
	ErrOutOfTurn          = errors.New("not your turn")
	ErrInvalidCardIndex   = errors.New("invalid card index")
	ErrIllegalPlay        = errors.New("card cannot be played")
	ErrNotWildCard        = errors.New("card is not a wild card")
	ErrColorRequired      = errors.New("color selection required")
)
