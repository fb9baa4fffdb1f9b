package game

import (
	"errors"
	"fmt"
)

// The four failure classes the engine can surface. Every one is a local
// validation failure: the transition is rejected and state is unchanged.
var (
	// ErrInvalidMove covers wrong turn, bad hand index, wrong card type for
	// the context, or an action attempted in the wrong machine state.
	ErrInvalidMove = errors.New("invalid move")

	// ErrInsufficientFunds means a price exceeds the payer's balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidState means no matching pending auction or double exists.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidArgument covers malformed configuration such as an
	// unsupported player count or out-of-range round.
	ErrInvalidArgument = errors.New("invalid argument")
)

func invalidMovef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidMove, fmt.Sprintf(format, args...))
}

func insufficientFundsf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInsufficientFunds, fmt.Sprintf(format, args...))
}

func invalidStatef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func invalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
