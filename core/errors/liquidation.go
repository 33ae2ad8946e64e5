package errors

import stderrors "errors"

// Liquidation engine errors (spec §4.F).
var (
	ErrNotLiquidatable        = stderrors.New("liquidation: position not liquidatable")
	ErrLiquidationCapExceeded = stderrors.New("liquidation: per-slot cap exceeded")
	ErrQueueFull              = stderrors.New("liquidation: priority queue is full")
)
