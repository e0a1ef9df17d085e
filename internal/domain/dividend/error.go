package dividend

import "errors"

var (
	ErrAnalysisNotFound = errors.New("dividend analysis not found")
	ErrNoHistory        = errors.New("no dividend history for symbol")
)
