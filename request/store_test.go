package request_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/marcelsud/wallet-connector/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("success - create get update delete", func(t *testing.T) {
		s := request.NewMemoryStore()
		require.NoError(t, s.Create(ctx, request.Record{ID: "r1", Status: request.Pending, CreatedAt: time.Now()}))

		rec, err := s.Update(ctx, "r1", func(r *request.Record) error {
			r.Status = request.Processing
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, request.Processing, rec.Status)

		got, err := s.Get(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, request.Processing, got.Status)

		require.NoError(t, s.Delete(ctx, "r1"))
		_, err = s.Get(ctx, "r1")
		assert.ErrorIs(t, err, request.ErrNotFound)
	})

	t.Run("error - duplicate id", func(t *testing.T) {
		s := request.NewMemoryStore()
		require.NoError(t, s.Create(ctx, request.Record{ID: "r1"}))
		assert.ErrorIs(t, s.Create(ctx, request.Record{ID: "r1"}), request.ErrExists)
	})

	t.Run("failed update leaves record unchanged", func(t *testing.T) {
		s := request.NewMemoryStore()
		require.NoError(t, s.Create(ctx, request.Record{ID: "r1", Status: request.Pending}))

		_, err := s.Update(ctx, "r1", func(r *request.Record) error {
			r.Status = request.Failed
			return errors.New("rejected")
		})
		require.Error(t, err)

		got, err := s.Get(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, request.Pending, got.Status)
	})

	t.Run("reads are copies", func(t *testing.T) {
		s := request.NewMemoryStore()
		done := time.Now()
		require.NoError(t, s.Create(ctx, request.Record{ID: "r1", CompletedAt: &done}))

		got, err := s.Get(ctx, "r1")
		require.NoError(t, err)
		*got.CompletedAt = done.Add(time.Hour)

		again, err := s.Get(ctx, "r1")
		require.NoError(t, err)
		assert.True(t, again.CompletedAt.Equal(done))
	})

	t.Run("concurrent access", func(t *testing.T) {
		s := request.NewMemoryStore()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("r%d", i)
				_ = s.Create(ctx, request.Record{ID: id, Status: request.Pending})
				_, _ = s.Get(ctx, id)
				_, _ = s.Update(ctx, id, func(r *request.Record) error {
					r.Status = request.Processing
					return nil
				})
				_ = s.Counts(ctx)
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 50, s.Counts(ctx)[request.Processing])
	})
}
