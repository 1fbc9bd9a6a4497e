// Package bootstrap builds the connector's collaborators from configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/marcelsud/wallet-connector/callback"
	"github.com/marcelsud/wallet-connector/config"
	"github.com/marcelsud/wallet-connector/policies"
	"github.com/marcelsud/wallet-connector/request"
	"github.com/marcelsud/wallet-connector/upstream"
	"github.com/marcelsud/wallet-connector/wallet"
	"github.com/marcelsud/wallet-connector/wallet/memory"
	"github.com/marcelsud/wallet-connector/wallet/postgres"
	"github.com/marcelsud/wallet-connector/wallet/redis"
	"github.com/rs/zerolog"
)

// Connector groups everything a binary needs to serve requests
type Connector struct {
	Manager  *request.Manager
	Callback *callback.Client
	Wallet   wallet.Repository
}

// Close drains in-flight jobs, then releases the wallet backend
func (c *Connector) Close(ctx context.Context) error {
	err := c.Manager.Close(ctx)
	if cerr := c.Wallet.Close(ctx); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// NewWalletRepository opens the backend selected by WALLET_BACKEND
func NewWalletRepository(ctx context.Context, cfg *config.Config) (wallet.Repository, error) {
	switch cfg.WalletBackend {
	case config.BackendRedis:
		repo, err := redis.NewRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("opening redis wallet: %w", err)
		}
		return repo, nil
	case config.BackendPostgres:
		repo, err := postgres.NewRepository(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres wallet: %w", err)
		}
		if err := repo.CreateTable(ctx); err != nil {
			repo.Close(ctx)
			return nil, fmt.Errorf("migrating postgres wallet: %w", err)
		}
		return repo, nil
	case config.BackendMemory, "":
		return memory.NewRepository(), nil
	default:
		return nil, fmt.Errorf("unknown wallet backend %q", cfg.WalletBackend)
	}
}

// LoadPolicies returns the built-in policies, overridden by POLICIES_FILE when set
func LoadPolicies(cfg *config.Config) (*policies.Loader, error) {
	loader := policies.NewLoader()
	if cfg.PoliciesFile == "" {
		return loader, nil
	}
	if err := loader.Load(cfg.PoliciesFile); err != nil {
		return nil, err
	}
	return loader, nil
}

// NewConnector wires the upstream client, wallet, callback client and request manager
func NewConnector(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Connector, error) {
	loader, err := LoadPolicies(cfg)
	if err != nil {
		return nil, err
	}
	upstreamPolicy := loader.MustGet(policies.Upstream)
	callbackPolicy := loader.MustGet(policies.Callback)

	extractor, err := upstream.NewClient(upstream.Options{
		BaseURL: cfg.UpstreamBaseURL,
		Token:   cfg.UpstreamToken,
		Timeout: cfg.GetUpstreamTimeout(),
		Logger:  &logger,
	})
	if err != nil {
		return nil, err
	}

	repo, err := NewWalletRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var secret callback.Secret
	if cfg.CallbackSigningSecret != "" {
		if secret, err = callback.ParseSecret(cfg.CallbackSigningSecret); err != nil {
			repo.Close(ctx)
			return nil, fmt.Errorf("parsing CALLBACK_SIGNING_SECRET: %w", err)
		}
	}

	cb := callback.NewClient(callback.Options{
		Policy:      &callbackPolicy,
		Logger:      &logger,
		ConnectorID: cfg.ConnectorID,
		Version:     cfg.ConnectorVersion,
		HTTPClient:  callback.NewHTTPClient(cfg.GetCallbackTimeout()),
		Secret:      secret,
	})

	manager := request.NewManager(request.Options{
		Extractor: extractor,
		Storer:    wallet.NewService(repo, cfg.WalletNamespace, logger),
		Notifier:  cb,
		Policy:    &upstreamPolicy,
		Retention: cfg.GetRetention(),
		Logger:    &logger,
	})

	logger.Info().
		Str("wallet_backend", cfg.WalletBackend).
		Str("namespace", cfg.WalletNamespace).
		Int("upstream_attempts", upstreamPolicy.MaxAttempts).
		Int("callback_attempts", callbackPolicy.MaxAttempts).
		Bool("callbacks_signed", !secret.IsZero()).
		Msg("connector ready")

	return &Connector{Manager: manager, Callback: cb, Wallet: repo}, nil
}
