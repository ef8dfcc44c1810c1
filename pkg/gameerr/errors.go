// Package gameerr defines the sentinel errors shared across the core.
// Public entry points never let these cross the HTTP/socket boundary raw;
// they are normalized into {success, message} payloads.
package gameerr

import "errors"

var (
	// ErrNotFound — referenced player/property/game/loan does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientFunds — payment attempt exceeds the payer's cash.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidState — the operation is not legal in the current state.
	ErrInvalidState = errors.New("invalid state for operation")
	// ErrConfiguration — a required collaborator is missing from the context.
	ErrConfiguration = errors.New("required collaborator unavailable")
	// ErrNotYourTurn — the acting player does not hold the turn.
	ErrNotYourTurn = errors.New("not your turn")
)
