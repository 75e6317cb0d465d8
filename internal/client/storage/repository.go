package storage

import "context"

// Repository is raw key/value persistence. Get returns (nil, nil) for a
// missing key; every other failure is an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
