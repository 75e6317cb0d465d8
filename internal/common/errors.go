package common

import "errors"

var (
	// ErrInvalidToken reports a token that cannot be parsed or verified.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired reports a token whose exp claim has passed.
	ErrTokenExpired = errors.New("token expired")
)
