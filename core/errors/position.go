package errors

import stderrors "errors"

// Position and margin engine errors (spec §4.E).
var (
	ErrUnknownPosition  = stderrors.New("position: unknown position")
	ErrPositionClosed   = stderrors.New("position: already closed")
	ErrInvalidLeg       = stderrors.New("position: invalid chain leg")
	ErrChainLegBounds   = stderrors.New("position: chain must hold 2-8 legs")
)
