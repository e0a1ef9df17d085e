package market

import "errors"

var ErrInstrumentNotFound = errors.New("instrument not found")
