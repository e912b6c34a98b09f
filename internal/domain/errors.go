package domain

import "errors"

var (
	ErrCapacityExhausted    = errors.New("no free slot within placement depth bound")
	ErrRuleNotFound         = errors.New("no effective commission rule")
	ErrInsufficientFunds    = errors.New("insufficient wallet balance")
	ErrDuplicateEvent       = errors.New("event already settled")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrInvestmentNotFound   = errors.New("investment not found")
	ErrPurchaseNotFound     = errors.New("purchase not found")
	ErrInvalidTransition    = errors.New("invalid investment state transition")
	ErrAlreadyPlaced        = errors.New("participant already placed in tree")
	ErrNegativeAmount       = errors.New("amount must be positive")
)
