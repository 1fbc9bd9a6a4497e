package request_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/marcelsud/wallet-connector/callback"
	"github.com/marcelsud/wallet-connector/failure"
	"github.com/marcelsud/wallet-connector/request"
	"github.com/marcelsud/wallet-connector/request/mocks"
	"github.com/marcelsud/wallet-connector/retry"
	"github.com/marcelsud/wallet-connector/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const idPattern = `^[a-z]+_\d+_[a-z0-9]+$`

var noSleep = retry.WithSleep(func(ctx context.Context, d time.Duration) error { return nil })

type fixture struct {
	extractor *mocks.Extractor
	storer    *mocks.Storer
	notifier  *mocks.Notifier
	manager   *request.Manager
}

func newFixture(t *testing.T, retention time.Duration) *fixture {
	t.Helper()
	f := &fixture{
		extractor: mocks.NewExtractor(t),
		storer:    mocks.NewStorer(t),
		notifier:  mocks.NewNotifier(t),
	}
	f.manager = request.NewManager(request.Options{
		Extractor: f.extractor,
		Storer:    f.storer,
		Notifier:  f.notifier,
		RetryOpts: []retry.Option{noSleep},
		Retention: retention,
	})
	return f
}

// drain waits for every scheduled job to finish
func (f *fixture) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.manager.Close(ctx))
}

func accounts() map[string]any {
	return map[string]any{"accounts": []any{map[string]any{"id": "acc-1", "balance": 120.5}}}
}

func matchResult(fn func(request.Result) bool) interface{} {
	return mock.MatchedBy(fn)
}

func TestAcceptSync(t *testing.T) {
	ctx := context.Background()

	t.Run("success - extracted and stored", func(t *testing.T) {
		f := newFixture(t, time.Minute)
		data := accounts()

		f.extractor.On("Extract", mock.Anything, "u@example.com").Return(data, nil).Once()
		f.storer.On("Store", mock.Anything, mock.AnythingOfType("string"), "u@example.com", data).
			Return(wallet.Result{Outcome: wallet.Stored, RecordID: "rec-1", Namespace: "bank-connector", Checksum: "abc"}, nil)

		acc, err := f.manager.Accept(ctx, request.Input{UserID: "u@example.com"})

		require.NoError(t, err)
		assert.False(t, acc.Async)
		assert.Regexp(t, idPattern, acc.RequestID)
		assert.Equal(t, request.Completed, acc.Status)
		require.NotNil(t, acc.Result)
		assert.Equal(t, data, acc.Result.Data)
		assert.True(t, acc.Result.Wallet.Stored)
		assert.Equal(t, "rec-1", acc.Result.Wallet.RecordID)

		_, err = f.manager.GetStatus(ctx, acc.RequestID)
		assert.True(t, failure.Is(err, failure.NotFound), "sync requests leave no record")
	})

	t.Run("success - retryable upstream failure recovers", func(t *testing.T) {
		f := newFixture(t, time.Minute)

		f.extractor.On("Extract", mock.Anything, "u1").Return(nil, failure.FromStatus(503, "upstream down")).Once()
		f.extractor.On("Extract", mock.Anything, "u1").Return(accounts(), nil).Once()
		f.storer.On("Store", mock.Anything, mock.Anything, "u1", mock.Anything).
			Return(wallet.Result{Outcome: wallet.Stored, RecordID: "rec-1"}, nil)

		acc, err := f.manager.Accept(ctx, request.Input{UserID: "u1"})

		require.NoError(t, err)
		assert.True(t, acc.Result.Wallet.Stored)
		f.extractor.AssertNumberOfCalls(t, "Extract", 2)
	})

	t.Run("success - duplicate write counts as stored", func(t *testing.T) {
		f := newFixture(t, time.Minute)

		f.extractor.On("Extract", mock.Anything, "u1").Return(accounts(), nil)
		f.storer.On("Store", mock.Anything, mock.Anything, "u1", mock.Anything).
			Return(wallet.Result{Outcome: wallet.Duplicate, RecordID: "rec-0"}, nil)

		acc, err := f.manager.Accept(ctx, request.Input{UserID: "u1"})

		require.NoError(t, err)
		assert.True(t, acc.Result.Wallet.Stored)
		assert.True(t, acc.Result.Wallet.Duplicate)
		assert.Empty(t, acc.Result.Wallet.Error)
	})

	t.Run("partial - storage failure still completes", func(t *testing.T) {
		f := newFixture(t, time.Minute)

		f.extractor.On("Extract", mock.Anything, "u1").Return(accounts(), nil)
		f.storer.On("Store", mock.Anything, mock.Anything, "u1", mock.Anything).
			Return(wallet.Result{Outcome: wallet.Failed}, failure.New(failure.Storage, "wallet unavailable"))

		acc, err := f.manager.Accept(ctx, request.Input{UserID: "u1"})

		require.NoError(t, err)
		assert.Equal(t, request.Completed, acc.Status)
		assert.False(t, acc.Result.Wallet.Stored)
		assert.Contains(t, acc.Result.Wallet.Error, "wallet unavailable")
	})

	t.Run("error - non-retryable upstream failure", func(t *testing.T) {
		f := newFixture(t, time.Minute)

		f.extractor.On("Extract", mock.Anything, "u1").Return(nil, failure.FromStatus(400, "bad user")).Once()

		_, err := f.manager.Accept(ctx, request.Input{UserID: "u1"})

		require.Error(t, err)
		assert.True(t, failure.Is(err, failure.Upstream))
		f.extractor.AssertNumberOfCalls(t, "Extract", 1)
	})

	t.Run("error - retries exhausted returns last failure", func(t *testing.T) {
		f := newFixture(t, time.Minute)

		f.extractor.On("Extract", mock.Anything, "u1").Return(nil, failure.FromStatus(502, "first")).Once()
		f.extractor.On("Extract", mock.Anything, "u1").Return(nil, failure.FromStatus(503, "second")).Once()
		f.extractor.On("Extract", mock.Anything, "u1").Return(nil, failure.RateLimited("third", time.Second)).Once()

		_, err := f.manager.Accept(ctx, request.Input{UserID: "u1"})

		require.Error(t, err)
		assert.Equal(t, "third", err.Error())
		assert.True(t, failure.Is(err, failure.RateLimit))
	})
}

func TestAcceptValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("error - missing user identifier", func(t *testing.T) {
		f := newFixture(t, time.Minute)

		_, err := f.manager.Accept(ctx, request.Input{UserID: "   ", Async: true})

		require.Error(t, err)
		assert.True(t, failure.Is(err, failure.Validation))
	})

	t.Run("error - malformed callback URL", func(t *testing.T) {
		f := newFixture(t, time.Minute)

		_, err := f.manager.Accept(ctx, request.Input{UserID: "u1", Async: true, CallbackURL: "not a url"})

		require.Error(t, err)
		assert.True(t, failure.Is(err, failure.Validation))
		assert.Empty(t, f.manager.Counts(ctx))
	})

	t.Run("error - closed manager rejects async work", func(t *testing.T) {
		f := newFixture(t, time.Minute)
		f.drain(t)

		_, err := f.manager.Accept(ctx, request.Input{UserID: "u1", Async: true})

		require.Error(t, err)
		assert.Empty(t, f.manager.Counts(ctx))
	})
}

func TestAcceptAsync(t *testing.T) {
	ctx := context.Background()

	t.Run("success - end to end with callbacks", func(t *testing.T) {
		f := newFixture(t, time.Minute)
		const cbURL = "https://example.com/cb"
		data := accounts()

		var (
			mu    sync.Mutex
			order []string
		)
		record := func(name string) func(mock.Arguments) {
			return func(mock.Arguments) {
				mu.Lock()
				order = append(order, name)
				mu.Unlock()
			}
		}

		f.extractor.On("Extract", mock.Anything, "u@example.com").Return(data, nil)
		f.storer.On("Store", mock.Anything, mock.Anything, "u@example.com", data).
			Return(wallet.Result{Outcome: wallet.Stored, RecordID: "rec-1"}, nil)
		f.notifier.On("NotifyProcessing", mock.Anything, cbURL, mock.Anything).
			Run(record("processing")).Return(callback.Result{Success: true, Attempts: 1})
		f.notifier.On("NotifyCompleted", mock.Anything, cbURL, mock.Anything, matchResult(func(r request.Result) bool {
			return r.Wallet.Stored && r.Wallet.RecordID == "rec-1"
		})).Run(record("completed")).Return(callback.Result{Success: true, Attempts: 1})

		acc, err := f.manager.Accept(ctx, request.Input{UserID: "u@example.com", Async: true, CallbackURL: cbURL})

		require.NoError(t, err)
		assert.True(t, acc.Async)
		assert.Equal(t, request.Pending, acc.Status)
		assert.Equal(t, cbURL, acc.CallbackURL)
		assert.Regexp(t, idPattern, acc.RequestID)
		assert.Nil(t, acc.Result)

		f.drain(t)

		view, err := f.manager.GetStatus(ctx, acc.RequestID)
		require.NoError(t, err)
		assert.Equal(t, request.Completed, view.Status)
		assert.True(t, view.HasCallback)
		require.NotNil(t, view.CompletedAt)
		require.NotNil(t, view.Result)
		assert.True(t, view.Result.Wallet.Stored)
		assert.GreaterOrEqual(t, view.Duration, int64(0))

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{"processing", "completed"}, order)
	})

	t.Run("failure - extraction error ends in failed state", func(t *testing.T) {
		f := newFixture(t, time.Minute)
		const cbURL = "https://hooks.example.com/x"

		f.extractor.On("Extract", mock.Anything, "u1").Return(nil, failure.FromStatus(401, "token expired"))
		f.notifier.On("NotifyProcessing", mock.Anything, cbURL, mock.Anything).Return(callback.Result{Success: true})
		f.notifier.On("NotifyFailed", mock.Anything, cbURL, mock.Anything, "token expired").Return(callback.Result{Success: true})

		acc, err := f.manager.Accept(ctx, request.Input{UserID: "u1", Async: true, CallbackURL: cbURL})
		require.NoError(t, err)

		f.drain(t)

		view, err := f.manager.GetStatus(ctx, acc.RequestID)
		require.NoError(t, err)
		assert.Equal(t, request.Failed, view.Status)
		assert.Equal(t, "token expired", view.Error)
		assert.Nil(t, view.Result)
		f.extractor.AssertNumberOfCalls(t, "Extract", 1)
	})

	t.Run("success - undelivered processing callback does not abort the job", func(t *testing.T) {
		f := newFixture(t, time.Minute)
		const cbURL = "https://example.com/cb"

		f.extractor.On("Extract", mock.Anything, "u1").Return(accounts(), nil)
		f.storer.On("Store", mock.Anything, mock.Anything, "u1", mock.Anything).
			Return(wallet.Result{Outcome: wallet.Stored}, nil)
		f.notifier.On("NotifyProcessing", mock.Anything, cbURL, mock.Anything).
			Return(callback.Result{Success: false, Attempts: 3, Error: "callback endpoint returned HTTP 503"})
		f.notifier.On("NotifyCompleted", mock.Anything, cbURL, mock.Anything, mock.Anything).
			Return(callback.Result{Success: true})

		acc, err := f.manager.Accept(ctx, request.Input{UserID: "u1", Async: true, CallbackURL: cbURL})
		require.NoError(t, err)

		f.drain(t)

		view, err := f.manager.GetStatus(ctx, acc.RequestID)
		require.NoError(t, err)
		assert.Equal(t, request.Completed, view.Status)
	})

	t.Run("failure - panic inside the job is converted to failed", func(t *testing.T) {
		f := newFixture(t, time.Minute)

		f.extractor.On("Extract", mock.Anything, "u1").
			Run(func(mock.Arguments) { panic("boom") }).
			Return(nil, nil)

		acc, err := f.manager.Accept(ctx, request.Input{UserID: "u1", Async: true})
		require.NoError(t, err)

		f.drain(t)

		view, err := f.manager.GetStatus(ctx, acc.RequestID)
		require.NoError(t, err)
		assert.Equal(t, request.Failed, view.Status)
		assert.Contains(t, view.Error, "boom")
		assert.False(t, view.HasCallback)
	})

	t.Run("success - terminal records are evicted after retention", func(t *testing.T) {
		f := newFixture(t, 20*time.Millisecond)

		f.extractor.On("Extract", mock.Anything, "u1").Return(accounts(), nil)
		f.storer.On("Store", mock.Anything, mock.Anything, "u1", mock.Anything).
			Return(wallet.Result{Outcome: wallet.Stored}, nil)

		acc, err := f.manager.Accept(ctx, request.Input{UserID: "u1", Async: true})
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			_, err := f.manager.GetStatus(ctx, acc.RequestID)
			return failure.Is(err, failure.NotFound)
		}, 2*time.Second, 5*time.Millisecond)

		f.drain(t)
	})
}

func TestGetStatus(t *testing.T) {
	t.Run("error - unknown id", func(t *testing.T) {
		m := request.NewManager(request.Options{})

		_, err := m.GetStatus(context.Background(), "req_1_unknown")

		require.Error(t, err)
		assert.True(t, failure.Is(err, failure.NotFound))
	})
}
