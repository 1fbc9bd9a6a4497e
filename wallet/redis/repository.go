package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/marcelsud/wallet-connector/checksum"
	"github.com/marcelsud/wallet-connector/wallet"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of wallet.Repository
 * Uses Redis Hashes for record storage
 * Uses SETNX on a per-user checksum key to make writes idempotent
 */

const (
	keyPrefix = "wallet" // wallet:{namespace}:record:{id} and wallet:{namespace}:checksum:{user}:{sum}
)

type Repository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRepository creates a new Redis repository
func NewRepository(addr, password string, db int) (*Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Repository{client: client}, nil
}

// WithTTL expires records and their checksum keys after d; zero keeps them forever
func (r *Repository) WithTTL(d time.Duration) *Repository {
	r.ttl = d
	return r
}

// Save claims the per-user checksum key and writes the record hash
func (r *Repository) Save(ctx context.Context, rec wallet.Record) (wallet.SaveResult, error) {
	sumKey := checksumKey(rec.Namespace, rec.UserID, rec.Checksum())

	claimed, err := r.client.SetNX(ctx, sumKey, rec.ID, r.ttl).Result()
	if err != nil {
		return wallet.SaveResult{}, fmt.Errorf("claiming checksum: %w", err)
	}
	if !claimed {
		existing, err := r.client.Get(ctx, sumKey).Result()
		if err != nil {
			return wallet.SaveResult{}, fmt.Errorf("reading existing checksum owner: %w", err)
		}
		return wallet.SaveResult{RecordID: existing, Duplicate: true}, nil
	}

	envJSON, err := rec.Envelope.Bytes()
	if err != nil {
		r.client.Del(ctx, sumKey)
		return wallet.SaveResult{}, fmt.Errorf("marshaling envelope: %w", err)
	}

	hashKey := recordKey(rec.Namespace, rec.ID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, hashKey, map[string]interface{}{
		"id":         rec.ID,
		"namespace":  rec.Namespace,
		"user_id":    rec.UserID,
		"checksum":   rec.Checksum(),
		"envelope":   string(envJSON),
		"created_at": rec.CreatedAt.UnixMilli(),
	})
	if r.ttl > 0 {
		pipe.Expire(ctx, hashKey, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		// release the claim so a retry is not mistaken for a duplicate
		r.client.Del(ctx, sumKey)
		return wallet.SaveResult{}, fmt.Errorf("storing wallet record: %w", err)
	}

	return wallet.SaveResult{RecordID: rec.ID}, nil
}

// Get retrieves a record by namespace and ID
func (r *Repository) Get(ctx context.Context, namespace, id string) (wallet.Record, error) {
	data, err := r.client.HGetAll(ctx, recordKey(namespace, id)).Result()
	if err != nil {
		return wallet.Record{}, fmt.Errorf("getting wallet record: %w", err)
	}
	if len(data) == 0 {
		return wallet.Record{}, wallet.ErrNotFound
	}

	var env checksum.Envelope
	if err := json.Unmarshal([]byte(data["envelope"]), &env); err != nil {
		return wallet.Record{}, fmt.Errorf("unmarshaling envelope: %w", err)
	}

	createdAt, _ := strconv.ParseInt(data["created_at"], 10, 64)

	return wallet.Record{
		ID:        data["id"],
		Namespace: data["namespace"],
		UserID:    data["user_id"],
		Envelope:  env,
		CreatedAt: time.UnixMilli(createdAt).UTC(),
	}, nil
}

// Ping reports whether Redis is reachable
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}

// GetClient returns the underlying Redis client
func (r *Repository) GetClient() *redis.Client {
	return r.client
}

func recordKey(namespace, id string) string {
	return fmt.Sprintf("%s:%s:record:%s", keyPrefix, namespace, id)
}

func checksumKey(namespace, userID, sum string) string {
	return fmt.Sprintf("%s:%s:checksum:%s:%s", keyPrefix, namespace, url.PathEscape(userID), sum)
}
