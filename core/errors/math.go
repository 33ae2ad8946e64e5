package errors

import stderrors "errors"

// Fixed-point math errors surfaced at the wire boundary (spec §4.A, §6).
// core/fixedpoint defines its own sentinels for internal use; these are the
// wire-level names the intent dispatcher maps them onto.
var (
	ErrMathOverflow  = stderrors.New("math: overflow")
	ErrDivisionByZero = stderrors.New("math: division by zero")
	ErrDomain        = stderrors.New("math: domain error")
)
