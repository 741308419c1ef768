package hearts

import "errors"

// Rejection kinds for player actions. Every failed action is a no-op on game
// state; these are returned (often wrapped with context) so the transport can
// signal the originating connection without broadcasting.
var (
	// ErrInvalidPhase means the action is not legal in the current phase
	ErrInvalidPhase = errors.New("action not valid in current phase")

	// ErrNotYourTurn means the acting player is not the current-turn player
	ErrNotYourTurn = errors.New("not your turn")

	// ErrIllegalCard means the card is not in the player's hand or not in
	// the legal-move set
	ErrIllegalCard = errors.New("illegal card")

	// ErrInvalidPassSelection means the pass is not exactly 3 distinct owned
	// cards, or passing has already settled
	ErrInvalidPassSelection = errors.New("invalid pass selection")

	// ErrRoomFull means the room already has its full complement of seats
	ErrRoomFull = errors.New("room is full")

	// ErrRoomNotReady means composition preconditions for starting are not met
	ErrRoomNotReady = errors.New("room is not ready")

	// ErrUnknownPlayer means the acting id is not seated in the room
	ErrUnknownPlayer = errors.New("unknown player")

	// ErrNotHost means a host-only action came from a non-host player
	ErrNotHost = errors.New("only the host can do that")
)
