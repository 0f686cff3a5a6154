package keyvalue

import (
	"context"
	"errors"
)

// ErrClosed is returned by adapters used after Close.
var ErrClosed = errors.New("keyvalue: store closed")

// Ports for durable key-value adapters.
type (
	Reader interface {
		// Get returns the value stored under key. found is false when the key
		// has never been written; that is not an error.
		Get(ctx context.Context, key string) (value []byte, found bool, err error)
	}

	Writer interface {
		// Set replaces the value stored under key. It returns only after the
		// value is durable for the adapter.
		Set(ctx context.Context, key string, value []byte) error
	}

	Store interface {
		Reader
		Writer
		Close() error
	}
)
