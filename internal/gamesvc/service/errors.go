package service

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
