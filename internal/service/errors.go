package service

import "errors"

var (
	ErrInvalidShares      = errors.New("error invalid share count")
	ErrInvalidAmount      = errors.New("error invalid amount")
	ErrUnknownSymbol      = errors.New("error unknown symbol")
	ErrInsufficientFunds  = errors.New("error insufficient funds")
	ErrNoPosition         = errors.New("error no position in symbol")
	ErrInsufficientShares = errors.New("error insufficient shares")
	ErrMissingField       = errors.New("error missing field")
	ErrWrongPassword      = errors.New("error wrong password")
	ErrPasswordMismatch   = errors.New("error password mismatch")
	ErrPasswordUnchanged  = errors.New("error password unchanged")
	ErrUsernameTaken      = errors.New("error username taken")
	ErrInvalidCredentials = errors.New("error invalid credentials")
	ErrQuoteUnavailable   = errors.New("error quote service unavailable")
)
