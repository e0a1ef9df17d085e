package etf

import "errors"

var (
	ErrETFNotFound = errors.New("etf not found")
	ErrETFExists   = errors.New("etf already tracked")
)
