package errors

import stderrors "errors"

// AMM family errors (spec §4.B).
var (
	ErrSlippageExceeded    = stderrors.New("amm: slippage exceeded")
	ErrMarketHalted        = stderrors.New("amm: market halted")
	ErrPriceClampExceeded  = stderrors.New("amm: price clamp exceeded")
	ErrSolverDidNotConverge = stderrors.New("amm: solver did not converge")
	ErrOutsideSafeDomain   = stderrors.New("amm: trade would push quantity outside safe domain")
	ErrUnknownOutcome      = stderrors.New("amm: unknown outcome")
	ErrAMMTypeImmutable    = stderrors.New("amm: type is immutable once set")
)
