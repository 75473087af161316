package loan

import "errors"

var (
	ErrNotFound               = errors.New("loan not found")
	ErrInvalidAmount          = errors.New("amount must be greater than 0")
	ErrInvalidTerm            = errors.New("term must be greater than 0")
	ErrInsufficientCollateral = errors.New("insufficient collateral value")
	ErrInvalidTransition      = errors.New("invalid loan state transition")
	ErrTerminalState          = errors.New("loan is in a terminal state")
	ErrConcurrentModification = errors.New("loan modified concurrently")
)
