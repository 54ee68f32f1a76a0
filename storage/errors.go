package storage

import "errors"

var (
	ErrNotFound     = errors.New("storage: not found")
	ErrInvalidID    = errors.New("storage: invalid blob id")
	ErrIntegrity    = errors.New("storage: stored bytes do not match their cid")
	ErrNoEndpoints  = errors.New("storage: no endpoints configured")
	ErrLocalStorage = errors.New("storage: local storage failed")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func isIntegrity(err error) bool { return errors.Is(err, ErrIntegrity) }
