package mongodb

import "errors"

var (
	ErrNotFound = errors.New("not found")
)
