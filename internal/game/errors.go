package game

import errorsmod "cosmossdk.io/errors"

const codespace = "mentalpoker"

// Sentinel errors for the orchestration layer. ErrSetup and ErrOutOfRange
// are unrecoverable caller mistakes; ErrAlreadyUnpickable, ErrMissingSecret
// and ErrProtocolViolation are recoverable at the layer above (re-request
// secrets or treat as cheating).
var (
	ErrSetup             = errorsmod.Register(codespace, 1, "invalid game setup")
	ErrOutOfRange        = errorsmod.Register(codespace, 2, "card index out of range")
	ErrAlreadyUnpickable = errorsmod.Register(codespace, 3, "card index already drawn or opened")
	ErrMissingSecret     = errorsmod.Register(codespace, 4, "missing opponent secret")
	ErrProtocolViolation = errorsmod.Register(codespace, 5, "protocol violation")
	ErrUnknownPlayer     = errorsmod.Register(codespace, 6, "unknown player id")
)
