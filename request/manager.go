package request

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/marcelsud/wallet-connector/callback"
	"github.com/marcelsud/wallet-connector/failure"
	"github.com/marcelsud/wallet-connector/internal/ids"
	"github.com/marcelsud/wallet-connector/retry"
	"github.com/marcelsud/wallet-connector/wallet"
	"github.com/rs/zerolog"
)

// DefaultRetention is how long a terminal record stays queryable
const DefaultRetention = 5 * time.Minute

// Extractor fetches account data for a user from the upstream API
type Extractor interface {
	Extract(ctx context.Context, userID string) (map[string]any, error)
}

// Storer persists extracted data in the destination wallet
type Storer interface {
	Store(ctx context.Context, requestID, userID string, data map[string]any) (wallet.Result, error)
}

// Notifier reports lifecycle transitions to a callback URL
type Notifier interface {
	NotifyProcessing(ctx context.Context, url, requestID string) callback.Result
	NotifyCompleted(ctx context.Context, url, requestID string, data any) callback.Result
	NotifyFailed(ctx context.Context, url, requestID, errMsg string) callback.Result
}

// UseCase defines the operations exposed to the transport layer
type UseCase interface {
	Accept(ctx context.Context, in Input) (Acceptance, error)
	GetStatus(ctx context.Context, id string) (View, error)
	Counts(ctx context.Context) map[Status]int
}

type Options struct {
	Store     Store
	Extractor Extractor
	Storer    Storer
	Notifier  Notifier
	Policy    *retry.Policy
	RetryOpts []retry.Option
	Retention time.Duration
	Logger    *zerolog.Logger
}

/* Manager owns the life of every accepted request
 * Async requests run on their own goroutine, released only after Accept returns
 */
type Manager struct {
	store     Store
	extractor Extractor
	storer    Storer
	notifier  Notifier
	policy    retry.Policy
	retryOpts []retry.Option
	retention time.Duration
	logger    zerolog.Logger
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	jobs   sync.WaitGroup

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// NewManager creates a new request manager with dependency injection
func NewManager(opts Options) *Manager {
	policy := retry.UpstreamPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	store := opts.Store
	if store == nil {
		store = NewMemoryStore()
	}
	retention := opts.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:     store,
		extractor: opts.Extractor,
		storer:    opts.Storer,
		notifier:  opts.Notifier,
		policy:    policy,
		retryOpts: opts.RetryOpts,
		retention: retention,
		logger:    logger.With().Str("component", "request-manager").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
		ctx:       ctx,
		cancel:    cancel,
		timers:    make(map[string]*time.Timer),
	}
}

// Accept validates the input and either runs it to completion or schedules it
func (m *Manager) Accept(ctx context.Context, in Input) (Acceptance, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return Acceptance{}, failure.Validationf("data is required")
	}
	if in.CallbackURL != "" {
		if err := callback.ValidateSyntax(in.CallbackURL); err != nil {
			return Acceptance{}, err
		}
	}

	if !in.Async {
		return m.runSync(ctx, userID)
	}

	rec := Record{
		ID:          ids.New("req"),
		UserID:      userID,
		Status:      Pending,
		CallbackURL: in.CallbackURL,
		CreatedAt:   m.now(),
	}
	if err := m.store.Create(ctx, rec); err != nil {
		return Acceptance{}, fmt.Errorf("creating request record: %w", err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = m.store.Delete(ctx, rec.ID)
		return Acceptance{}, failure.New(failure.Internal, "manager is shutting down")
	}
	m.jobs.Add(1)
	m.mu.Unlock()

	gate := make(chan struct{})
	go m.runJob(rec.ID, gate)
	defer close(gate)

	m.logger.Info().
		Str("request_id", rec.ID).
		Bool("has_callback", rec.CallbackURL != "").
		Msg("request accepted")

	return Acceptance{
		RequestID:   rec.ID,
		Async:       true,
		Status:      Pending,
		CallbackURL: rec.CallbackURL,
	}, nil
}

// GetStatus returns the projection of a live record
func (m *Manager) GetStatus(ctx context.Context, id string) (View, error) {
	rec, err := m.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return View{}, failure.NotFoundf("request %s not found", id)
	}
	if err != nil {
		return View{}, fmt.Errorf("getting request record: %w", err)
	}
	return rec.View(m.now()), nil
}

// Counts returns the number of live records per status
func (m *Manager) Counts(ctx context.Context) map[Status]int {
	return m.store.Counts(ctx)
}

func (m *Manager) runSync(ctx context.Context, userID string) (Acceptance, error) {
	id := ids.New("req")
	log := m.logger.With().Str("request_id", id).Logger()

	data, err := m.extract(ctx, id, userID)
	if err != nil {
		log.Warn().Err(err).Msg("synchronous extraction failed")
		return Acceptance{RequestID: id, Status: Failed}, err
	}

	res := m.persist(ctx, id, userID, data)
	log.Info().Bool("stored", res.Wallet.Stored).Msg("synchronous request completed")
	return Acceptance{RequestID: id, Status: Completed, Result: &res}, nil
}

// runJob drives one async request from pending to a terminal state
func (m *Manager) runJob(id string, gate <-chan struct{}) {
	defer m.jobs.Done()
	<-gate

	ctx := m.ctx
	log := m.logger.With().Str("request_id", id).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("request job panicked")
			m.fail(ctx, id, fmt.Sprintf("internal error: %v", r))
		}
	}()

	rec, err := m.transition(ctx, id, Processing, nil)
	if err != nil {
		log.Error().Err(err).Msg("starting request job")
		return
	}

	if rec.CallbackURL != "" && m.notifier != nil {
		if res := m.notifier.NotifyProcessing(ctx, rec.CallbackURL, id); !res.Success {
			log.Warn().Str("error", res.Error).Msg("processing callback not delivered")
		}
	}

	data, err := m.extract(ctx, id, rec.UserID)
	if err != nil {
		m.fail(ctx, id, err.Error())
		return
	}

	res := m.persist(ctx, id, rec.UserID, data)
	m.complete(ctx, id, res)
}

func (m *Manager) extract(ctx context.Context, id, userID string) (map[string]any, error) {
	if m.extractor == nil {
		return nil, failure.New(failure.Internal, "no extractor configured")
	}
	notify := retry.WithNotify(func(a retry.Attempt) {
		m.logger.Warn().
			Err(a.Err).
			Str("request_id", id).
			Int("attempt", a.Number).
			Dur("delay", a.Delay).
			Msg("extraction failed, retrying")
	})
	opts := append([]retry.Option{notify}, m.retryOpts...)

	return retry.DoWithResult(ctx, m.policy, func(ctx context.Context) (map[string]any, error) {
		return m.extractor.Extract(ctx, userID)
	}, opts...)
}

// persist stores the data; failures are reported in the summary, never returned
func (m *Manager) persist(ctx context.Context, id, userID string, data map[string]any) Result {
	res := Result{Data: data}
	if m.storer == nil {
		res.Wallet.Error = "no wallet configured"
		return res
	}

	stored, err := m.storer.Store(ctx, id, userID, data)
	res.Wallet = WalletSummary{
		Stored:    err == nil && stored.Stored(),
		Duplicate: stored.Outcome == wallet.Duplicate,
		RecordID:  stored.RecordID,
		Namespace: stored.Namespace,
		Checksum:  stored.Checksum,
	}
	if err != nil {
		m.logger.Warn().Err(err).Str("request_id", id).Msg("storage failed, completing without wallet record")
		res.Wallet.Error = err.Error()
	}
	return res
}

func (m *Manager) complete(ctx context.Context, id string, res Result) {
	rec, err := m.transition(ctx, id, Completed, func(r *Record) {
		r.Result = &res
	})
	if err != nil {
		m.logger.Error().Err(err).Str("request_id", id).Msg("completing request")
		return
	}
	m.logger.Info().Str("request_id", id).Bool("stored", res.Wallet.Stored).Msg("request completed")

	if rec.CallbackURL != "" && m.notifier != nil {
		if cb := m.notifier.NotifyCompleted(ctx, rec.CallbackURL, id, res); !cb.Success {
			m.logger.Warn().Str("request_id", id).Str("error", cb.Error).Msg("completion callback not delivered")
		}
	}
	m.scheduleCleanup(id)
}

func (m *Manager) fail(ctx context.Context, id, msg string) {
	rec, err := m.transition(ctx, id, Failed, func(r *Record) {
		r.Error = msg
	})
	if err != nil {
		m.logger.Error().Err(err).Str("request_id", id).Msg("failing request")
		return
	}
	m.logger.Warn().Str("request_id", id).Str("error", msg).Msg("request failed")

	if rec.CallbackURL != "" && m.notifier != nil {
		if cb := m.notifier.NotifyFailed(ctx, rec.CallbackURL, id, msg); !cb.Success {
			m.logger.Warn().Str("request_id", id).Str("error", cb.Error).Msg("failure callback not delivered")
		}
	}
	m.scheduleCleanup(id)
}

// transition moves the record forward, rejecting regressions and repeated terminal states
func (m *Manager) transition(ctx context.Context, id string, next Status, mutate func(*Record)) (Record, error) {
	return m.store.Update(ctx, id, func(r *Record) error {
		if !r.Status.CanTransition(next) {
			return fmt.Errorf("invalid transition %s -> %s", r.Status, next)
		}
		r.Status = next
		if next.IsFinal() {
			now := m.now()
			r.CompletedAt = &now
		}
		if mutate != nil {
			mutate(r)
		}
		return nil
	})
}

func (m *Manager) scheduleCleanup(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.timers[id] = time.AfterFunc(m.retention, func() {
		if err := m.store.Delete(context.Background(), id); err != nil {
			m.logger.Error().Err(err).Str("request_id", id).Msg("evicting request record")
		}
		m.mu.Lock()
		delete(m.timers, id)
		m.mu.Unlock()
	})
}

/* Close stops accepting async work and waits for in-flight jobs
 * If ctx expires first, running jobs are canceled and ctx.Err() is returned
 */
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.jobs.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		m.cancel()
		<-done
		err = ctx.Err()
	}
	m.cancel()

	m.mu.Lock()
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
	m.mu.Unlock()
	return err
}
