package engine

import "errors"

var (
	ErrInvalidStake     = errors.New("invalid stake")
	ErrRoomNotJoinable  = errors.New("room not joinable")
	ErrAlreadyJoined    = errors.New("already joined")
	ErrRoomFull         = errors.New("room full")
	ErrNotCreator       = errors.New("not room creator")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrInvalidCardIndex = errors.New("invalid card index")
	ErrWrongState       = errors.New("operation not valid in current room state")
)
