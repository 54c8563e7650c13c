// Package service declares ports to infrastructure that use cases depend on.
package service

import "safeguard/internal/errors"

// ErrNoGeocodeMatch is returned when an address has no match.
var ErrNoGeocodeMatch = errors.New("no geocode match")
