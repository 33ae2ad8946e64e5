package errors

import stderrors "errors"

// Coverage accountant and fee engine errors (spec §4.C, §4.D).
var (
	ErrCoverageTooLow     = stderrors.New("coverage: ratio too low for requested action")
	ErrInsufficientFunds  = stderrors.New("coverage: insufficient funds")
	ErrLeverageTooHigh    = stderrors.New("coverage: leverage exceeds admissible cap")
	ErrChainDepthExceeded = stderrors.New("fees: flash chain depth exceeds cap")
)
