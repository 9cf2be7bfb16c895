package usecases

import "errors"

var (
	ErrSessionNotFound = errors.New("navigation session not found")
	ErrNoSpatialIndex  = errors.New("no place index loaded for nearby search")
)
