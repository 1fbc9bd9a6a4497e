package wallet

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when a record does not exist
var ErrNotFound = errors.New("wallet record not found")

// Reader provides read operations for wallet records
type Reader interface {
	Get(ctx context.Context, namespace, id string) (Record, error)
}

// Writer provides write operations for wallet records
type Writer interface {
	/* Save persists a record unless the namespace already holds one with
	 * the same checksum, in which case the existing ID is reported as Duplicate
	 */
	Save(ctx context.Context, rec Record) (SaveResult, error)
}

type Repository interface {
	Reader
	Writer
	Close(ctx context.Context) error
}
