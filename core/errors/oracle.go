package errors

import stderrors "errors"

// Oracle ingestion errors (spec §4.G).
var (
	ErrOracleStale        = stderrors.New("oracle: price is stale")
	ErrOracleSpreadHalted = stderrors.New("oracle: spread halt in effect")
)
