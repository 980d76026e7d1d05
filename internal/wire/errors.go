package wire

import "errors"

// Fatal error kinds (spec §7). Each is produced at the point of detection;
// none is silently recovered from by the stage that raises it.
var (
	ErrNoAddressField  = errors.New("no address field found")
	ErrVariableField   = errors.New("fixed-size read attempted across a variable-size field")
	ErrLayout          = errors.New("field layout operation failed")
	ErrEmptyCluster    = errors.New("clustering produced an empty message set")
	ErrMergeLoss       = errors.New("symbols lost during context-correlation merge")
)

// Non-fatal conditions. Stages that hit these skip work for the current
// symbol and leave it unmodified; they are exposed so callers/tests can
// distinguish "nothing to do" from an actual failure.
var (
	ErrTooFewMessagesForSeq          = errors.New("too few messages for sequence detection")
	ErrInsufficientContextForCorrelation = errors.New("insufficient context data for correlation")
)
