package sector

import "errors"

var (
	ErrSectorNotFound = errors.New("sector not found")
	ErrNoSector       = errors.New("stock has no sector assigned")
)
