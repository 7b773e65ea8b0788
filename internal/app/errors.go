package app

import (
	"errors"

	"monopoly/internal/ledger"
)

// Code classifies engine failures so transports can map them without string matching.
type Code string

const (
	CodeInvalidArgument     Code = "invalid_argument"
	CodeNotFound            Code = "not_found"
	CodeUnauthorized        Code = "unauthorized"
	CodeSessionFull         Code = "session_full"
	CodeInsufficientPlayers Code = "insufficient_players"
	CodeNotYourTurn         Code = "not_your_turn"
	CodeWrongPosition       Code = "wrong_position"
	CodeAlreadyOwned        Code = "already_owned"
	CodeInsufficientFunds   Code = "insufficient_funds"
	CodeInvalidStatus       Code = "invalid_status"
	CodeAlreadyJoined       Code = "already_joined"
	CodeNotInSession        Code = "not_in_session"
	CodeTileNotForSale      Code = "tile_not_for_sale"
	CodeInternal            Code = "internal"
)

// Error is a categorized engine failure. A failed invocation never leaves partial state.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches a target that carries only a Code, so callers can test by category.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Code == e.Code
}

var (
	ErrInvalidAccount      = &Error{Code: CodeInvalidArgument, Message: "account identity is required"}
	ErrInvalidAmount       = &Error{Code: CodeInvalidArgument, Message: "amount must be positive"}
	ErrInvalidTile         = &Error{Code: CodeInvalidArgument, Message: "tile is not on the board"}
	ErrSessionNotFound     = &Error{Code: CodeNotFound, Message: "session not found"}
	ErrUnauthorized        = &Error{Code: CodeUnauthorized, Message: "only the game engine can mint"}
	ErrSessionFull         = &Error{Code: CodeSessionFull, Message: "session full"}
	ErrInsufficientPlayers = &Error{Code: CodeInsufficientPlayers, Message: "need 2+ players"}
	ErrNotYourTurn         = &Error{Code: CodeNotYourTurn, Message: "not your turn"}
	ErrWrongPosition       = &Error{Code: CodeWrongPosition, Message: "wrong position"}
	ErrAlreadyOwned        = &Error{Code: CodeAlreadyOwned, Message: "tile already owned"}
	ErrInsufficientFunds   = &Error{Code: CodeInsufficientFunds, Message: "insufficient funds"}
	ErrInvalidStatus       = &Error{Code: CodeInvalidStatus, Message: "session status does not allow this action"}
	ErrAlreadyJoined       = &Error{Code: CodeAlreadyJoined, Message: "account already joined"}
	ErrNotInSession        = &Error{Code: CodeNotInSession, Message: "account is not seated in this session"}
	ErrTileNotForSale      = &Error{Code: CodeTileNotForSale, Message: "tile is not for sale"}
)

// CodeOf returns the category of err, CodeInternal for uncategorized errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// translateErr maps ledger and store failures into engine errors.
func translateErr(err error) error {
	var e *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &e):
		return err
	case errors.Is(err, ledger.ErrUnauthorized):
		return ErrUnauthorized
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return ErrInsufficientFunds
	case errors.Is(err, ledger.ErrInvalidAccount):
		return ErrInvalidAccount
	case errors.Is(err, ledger.ErrInvalidAmount):
		return ErrInvalidAmount
	default:
		return &Error{Code: CodeInternal, Message: "commit failed", Cause: err}
	}
}
