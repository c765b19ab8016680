package config

import "errors"

var (
	ErrStoreURLMissing  = errors.New("STORE_URL is required")
	ErrStoreKeyMissing  = errors.New("STORE_KEY is required")
	ErrInvalidCadence   = errors.New("NOTIFY_CADENCE_MINUTES must be a positive integer")
	ErrInvalidHorizon   = errors.New("occurrence horizon must be a non-negative integer")
	ErrRedisAddrMissing = errors.New("REDIS_ADDR is required")
	ErrInvalidRedisDB   = errors.New("REDIS_DB must be a valid integer")
)
