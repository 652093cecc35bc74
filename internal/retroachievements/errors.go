package retroachievements

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAuth is returned when the service answers with its bad
	// credentials sentinel. The service uses the same text for an unknown
	// user and a wrong key.
	ErrInvalidAuth = errors.New("invalid RetroAchievements credentials")

	// ErrMalformedResponse wraps JSON parse failures and bodies whose shape
	// does not match the endpoint
	ErrMalformedResponse = errors.New("malformed RetroAchievements response")

	// ErrUnexpectedStatus is returned for non-2xx responses that are not the
	// credentials sentinel
	ErrUnexpectedStatus = errors.New("unexpected RetroAchievements status")

	// ErrRateLimited is returned for 429 responses and while the collector
	// backs off after one. It matches ErrUnexpectedStatus too.
	ErrRateLimited = fmt.Errorf("%w: rate limited", ErrUnexpectedStatus)
)
