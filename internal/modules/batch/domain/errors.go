package domain

import "errors"

var (
	ErrChannelMismatch = errors.New("both links must be from the same channel")
	ErrInvalidRange    = errors.New("start id cannot exceed end id")
)
