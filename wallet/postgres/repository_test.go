//go:build !integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/marcelsud/wallet-connector/checksum"
	"github.com/marcelsud/wallet-connector/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(t *testing.T) wallet.Record {
	t.Helper()
	env, err := checksum.Wrap(map[string]any{"accounts": 2}, nil)
	require.NoError(t, err)
	return wallet.Record{
		ID:        "rec-1",
		Namespace: "ns",
		UserID:    "user-1",
		Envelope:  env,
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestRepository_Save_Unit(t *testing.T) {
	ctx := context.Background()

	t.Run("insert new record", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := &Repository{DB: db}
		rec := newRecord(t)

		mock.ExpectQuery(regexp.QuoteMeta(insertRecord)).
			WithArgs("rec-1", "ns", "user-1", rec.Checksum(), sqlmock.AnyArg(), rec.CreatedAt).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("rec-1"))

		res, err := repo.Save(ctx, rec)

		require.NoError(t, err)
		assert.Equal(t, "rec-1", res.RecordID)
		assert.False(t, res.Duplicate)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict reports existing record", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := &Repository{DB: db}
		rec := newRecord(t)

		mock.ExpectQuery(regexp.QuoteMeta(insertRecord)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectQuery(regexp.QuoteMeta(selectByChecksum)).
			WithArgs("ns", "user-1", rec.Checksum()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("rec-0"))

		res, err := repo.Save(ctx, rec)

		require.NoError(t, err)
		assert.Equal(t, "rec-0", res.RecordID)
		assert.True(t, res.Duplicate)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(insertRecord)).WillReturnError(errors.New("connection reset"))

		_, err = (&Repository{DB: db}).Save(ctx, newRecord(t))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "inserting wallet record")
	})
}

func TestRepository_Get_Unit(t *testing.T) {
	ctx := context.Background()

	t.Run("existing record", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rec := newRecord(t)
		envJSON, err := rec.Envelope.Bytes()
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta(selectRecord)).
			WithArgs("ns", "rec-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "namespace", "user_id", "envelope", "created_at"}).
				AddRow("rec-1", "ns", "user-1", envJSON, rec.CreatedAt))

		got, err := (&Repository{DB: db}).Get(ctx, "ns", "rec-1")

		require.NoError(t, err)
		assert.Equal(t, rec.Checksum(), got.Checksum())
		assert.True(t, got.Envelope.Valid())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing record", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(selectRecord)).WillReturnError(sql.ErrNoRows)

		_, err = (&Repository{DB: db}).Get(ctx, "ns", "nope")
		assert.ErrorIs(t, err, wallet.ErrNotFound)
	})
}

func TestRepository_CreateTable_Unit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS wallet_records").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP CONSTRAINT IF EXISTS wallet_records_namespace_checksum_key").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("ON wallet_records (namespace, user_id, checksum)")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, (&Repository{DB: db}).CreateTable(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
