package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/marcelsud/wallet-connector/wallet"
)

/* PostgreSQL implementation of wallet.Repository
 * The unique (namespace, user_id, checksum) index makes Save idempotent per user:
 * a conflicting insert is resolved by reading back the existing row
 */

type Repository struct {
	DB *sql.DB
}

// NewRepository creates a PostgreSQL repository with the default pool (25, 5, 5 min)
func NewRepository(connectionString string) (*Repository, error) {
	return NewRepositoryWithPoolConfig(connectionString, 25, 5, 5)
}

// NewRepositoryWithPoolConfig creates a PostgreSQL repository with a custom pool
func NewRepositoryWithPoolConfig(connectionString string, maxOpenConns, maxIdleConns, maxLifeMinutes int) (*Repository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
	if maxLifeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(maxLifeMinutes) * time.Minute)
	}

	return &Repository{DB: db}, nil
}

const insertRecord = `INSERT INTO wallet_records (id, namespace, user_id, checksum, envelope, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (namespace, user_id, checksum) DO NOTHING
		RETURNING id`

const selectByChecksum = `SELECT id FROM wallet_records WHERE namespace = $1 AND user_id = $2 AND checksum = $3`

const selectRecord = `SELECT id, namespace, user_id, envelope, created_at FROM wallet_records WHERE namespace = $1 AND id = $2`

// Save inserts the record, reporting the existing row when the user already stored the checksum
func (r *Repository) Save(ctx context.Context, rec wallet.Record) (wallet.SaveResult, error) {
	envJSON, err := rec.Envelope.Bytes()
	if err != nil {
		return wallet.SaveResult{}, fmt.Errorf("marshaling envelope: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id string
	err = r.DB.QueryRowContext(ctx, insertRecord,
		rec.ID, rec.Namespace, rec.UserID, rec.Checksum(), envJSON, createdAt,
	).Scan(&id)
	if err == nil {
		return wallet.SaveResult{RecordID: id}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return wallet.SaveResult{}, fmt.Errorf("inserting wallet record: %w", err)
	}

	if err := r.DB.QueryRowContext(ctx, selectByChecksum, rec.Namespace, rec.UserID, rec.Checksum()).Scan(&id); err != nil {
		return wallet.SaveResult{}, fmt.Errorf("reading duplicate wallet record: %w", err)
	}
	return wallet.SaveResult{RecordID: id, Duplicate: true}, nil
}

// Get retrieves a record by namespace and ID
func (r *Repository) Get(ctx context.Context, namespace, id string) (wallet.Record, error) {
	var (
		rec     wallet.Record
		envJSON []byte
	)
	err := r.DB.QueryRowContext(ctx, selectRecord, namespace, id).Scan(
		&rec.ID,
		&rec.Namespace,
		&rec.UserID,
		&envJSON,
		&rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return wallet.Record{}, wallet.ErrNotFound
	}
	if err != nil {
		return wallet.Record{}, fmt.Errorf("selecting wallet record: %w", err)
	}

	if err := json.Unmarshal(envJSON, &rec.Envelope); err != nil {
		return wallet.Record{}, fmt.Errorf("unmarshaling envelope: %w", err)
	}
	return rec, nil
}

// Ping reports whether the database is reachable
func (r *Repository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

// Close closes the database connection
func (r *Repository) Close(ctx context.Context) error {
	if r.DB != nil {
		return r.DB.Close()
	}
	return nil
}

// CreateTable creates the wallet_records table and its per-user dedup index
func (r *Repository) CreateTable(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS wallet_records (
			id TEXT PRIMARY KEY,
			namespace TEXT NOT NULL,
			user_id TEXT NOT NULL,
			checksum CHAR(64) NOT NULL,
			envelope JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		// tables created before dedup was scoped per user carry a (namespace, checksum) constraint
		`ALTER TABLE wallet_records DROP CONSTRAINT IF EXISTS wallet_records_namespace_checksum_key`,
		`CREATE UNIQUE INDEX IF NOT EXISTS wallet_records_dedup_idx ON wallet_records (namespace, user_id, checksum)`,
	}

	for _, stmt := range statements {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	return nil
}

// DropTable removes the wallet_records table
func (r *Repository) DropTable(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, "DROP TABLE IF EXISTS wallet_records CASCADE"); err != nil {
		return fmt.Errorf("dropping table: %w", err)
	}
	return nil
}
