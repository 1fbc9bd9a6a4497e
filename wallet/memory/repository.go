package memory

import (
	"context"
	"sync"

	"github.com/marcelsud/wallet-connector/wallet"
)

/* In-process implementation of wallet.Repository
 * Records are lost on restart, intended for local runs and tests
 */

type Repository struct {
	mu        sync.RWMutex
	records   map[string]wallet.Record // namespace:id -> record
	checksums map[string]string        // namespace, user, checksum -> id
}

// NewRepository creates an empty in-memory repository
func NewRepository() *Repository {
	return &Repository{
		records:   make(map[string]wallet.Record),
		checksums: make(map[string]string),
	}
}

// Save stores a record unless the same user already stored this checksum in the namespace
func (r *Repository) Save(ctx context.Context, rec wallet.Record) (wallet.SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return wallet.SaveResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sumKey := dedupKey(rec.Namespace, rec.UserID, rec.Checksum())
	if id, ok := r.checksums[sumKey]; ok {
		return wallet.SaveResult{RecordID: id, Duplicate: true}, nil
	}

	r.checksums[sumKey] = rec.ID
	r.records[key(rec.Namespace, rec.ID)] = rec
	return wallet.SaveResult{RecordID: rec.ID}, nil
}

// Get retrieves a record by namespace and ID
func (r *Repository) Get(ctx context.Context, namespace, id string) (wallet.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[key(namespace, id)]
	if !ok {
		return wallet.Record{}, wallet.ErrNotFound
	}
	return rec, nil
}

// Len returns the number of stored records
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *Repository) Close(ctx context.Context) error {
	return nil
}

func key(namespace, suffix string) string {
	return namespace + ":" + suffix
}

func dedupKey(namespace, userID, sum string) string {
	return namespace + "\x00" + userID + "\x00" + sum
}
