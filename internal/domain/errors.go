package domain

import "github.com/cockroachdb/errors"

var (
	ErrUnauthenticated  = errors.New("unauthorized access")
	ErrInvalidToken     = errors.New("invalid token")
	ErrForbidden        = errors.New("forbidden access")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidInput     = errors.New("invalid input")
	ErrSoldOut          = errors.New("no seats left")
	ErrAlreadyPurchased = errors.New("cart item already purchased")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrUpstream         = errors.New("upstream failure")
)
