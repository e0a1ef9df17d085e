package strategy

import "errors"

var (
	ErrStrategyNotFound = errors.New("strategy not found")
	ErrMissingName      = errors.New("strategy name is required")
	ErrNoCriteria       = errors.New("strategy has no screening criteria")
	ErrInvalidCriteria  = errors.New("strategy criteria out of range")
)
