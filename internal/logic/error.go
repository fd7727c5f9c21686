package logic

import "errors"

var (
	ErrBillNotFound     = errors.New("bill not found")
	ErrRepairInProgress = errors.New("another repair pass holds the lock for this scope")
)
