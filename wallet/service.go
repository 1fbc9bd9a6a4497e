package wallet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/wallet-connector/checksum"
	"github.com/marcelsud/wallet-connector/failure"
	"github.com/rs/zerolog"
)

// DefaultNamespace is used when no namespace is configured
const DefaultNamespace = "bank-connector"

// UseCase defines the storage operations offered to the request lifecycle
type UseCase interface {
	Store(ctx context.Context, requestID, userID string, data map[string]any) (Result, error)
	Verify(ctx context.Context, id string) (bool, error)
}

type Service struct {
	Repo      Repository
	Namespace string
	logger    zerolog.Logger
}

// NewService creates a new wallet service with dependency injection
func NewService(repo Repository, namespace string, logger zerolog.Logger) *Service {
	if strings.TrimSpace(namespace) == "" {
		namespace = DefaultNamespace
	}
	return &Service{
		Repo:      repo,
		Namespace: namespace,
		logger:    logger.With().Str("component", "wallet").Logger(),
	}
}

// Store wraps data in a checksum envelope and persists it
func (s *Service) Store(ctx context.Context, requestID, userID string, data map[string]any) (Result, error) {
	var inboxID *string
	if requestID != "" {
		inboxID = &requestID
	}
	env, err := checksum.Wrap(data, inboxID)
	if err != nil {
		return Result{Outcome: Failed, Namespace: s.Namespace}, failure.Wrap(failure.Storage, "building envelope", err)
	}

	rec := Record{
		ID:        uuid.NewString(),
		Namespace: s.Namespace,
		UserID:    userID,
		Envelope:  env,
		CreatedAt: time.Now().UTC(),
	}

	saved, err := s.Repo.Save(ctx, rec)
	if err != nil {
		s.logger.Error().Err(err).Str("request_id", requestID).Msg("storing wallet record")
		return Result{Outcome: Failed, Namespace: s.Namespace, Checksum: rec.Checksum()},
			failure.Wrap(failure.Storage, "storing wallet record", err)
	}

	outcome := Stored
	if saved.Duplicate {
		outcome = Duplicate
	}
	s.logger.Info().
		Str("request_id", requestID).
		Str("record_id", saved.RecordID).
		Str("outcome", outcome.String()).
		Msg("wallet record saved")

	return Result{
		Outcome:   outcome,
		RecordID:  saved.RecordID,
		Namespace: s.Namespace,
		Checksum:  rec.Checksum(),
	}, nil
}

// Verify reloads a record and checks its envelope checksum
func (s *Service) Verify(ctx context.Context, id string) (bool, error) {
	rec, err := s.Repo.Get(ctx, s.Namespace, id)
	if err != nil {
		return false, fmt.Errorf("getting wallet record: %w", err)
	}
	return rec.Envelope.Valid(), nil
}
