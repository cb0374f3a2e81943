package secrets

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// SecretSource defines where secrets are loaded from
type SecretSource string

const (
	// SourceEnvironment loads secrets from environment variables
	SourceEnvironment SecretSource = "environment"
	// SourceVault loads secrets from Azure Key Vault
	SourceVault SecretSource = "vault"
	// SourceAuto uses the environment in development and the vault elsewhere
	SourceAuto SecretSource = "auto"
)

// Fetcher reads a named secret from a backing store
type Fetcher interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// ProviderConfig holds configuration for the secrets provider
type ProviderConfig struct {
	Source       SecretSource
	VaultName    string
	Environment  string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Provider resolves secrets from the environment or a vault
type Provider struct {
	source  SecretSource
	fetcher Fetcher
	logger  *zap.Logger
}

// ResolveSource turns SourceAuto into a concrete source for an environment
func ResolveSource(source SecretSource, environment string) SecretSource {
	if source != SourceAuto {
		return source
	}
	switch environment {
	case "development", "local", "test", "":
		return SourceEnvironment
	default:
		return SourceVault
	}
}

// NewProvider creates a provider, connecting to Key Vault when the resolved
// source is the vault.
func NewProvider(cfg *ProviderConfig, logger *zap.Logger) (*Provider, error) {
	source := ResolveSource(cfg.Source, cfg.Environment)

	var fetcher Fetcher
	if source == SourceVault {
		if cfg.VaultName == "" {
			return nil, fmt.Errorf("vault name required when using vault secret source")
		}
		client, err := NewVaultClient(&VaultConfig{
			VaultName:    cfg.VaultName,
			CacheEnabled: cfg.CacheEnabled,
			CacheTTL:     cfg.CacheTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vault client: %w", err)
		}
		fetcher = client
	}

	logger.Info("Secrets provider initialized",
		zap.String("source", string(source)),
		zap.String("environment", cfg.Environment),
	)

	return NewProviderWithFetcher(source, fetcher, logger), nil
}

// NewProviderWithFetcher builds a provider around an existing fetcher
func NewProviderWithFetcher(source SecretSource, fetcher Fetcher, logger *zap.Logger) *Provider {
	return &Provider{source: source, fetcher: fetcher, logger: logger}
}

// GetSecret retrieves a secret. For the environment source the name is an
// environment variable; for the vault source it is a Key Vault secret name.
func (p *Provider) GetSecret(ctx context.Context, name string) (string, error) {
	switch p.source {
	case SourceEnvironment:
		value := os.Getenv(name)
		if value == "" {
			return "", fmt.Errorf("environment variable '%s' not set", name)
		}
		return value, nil
	case SourceVault:
		if p.fetcher == nil {
			return "", fmt.Errorf("vault client not initialized")
		}
		return p.fetcher.GetSecret(ctx, name)
	default:
		return "", fmt.Errorf("unknown secret source: %s", p.source)
	}
}

// GetSecretOrEnv prefers an explicitly set environment variable and falls back
// to the configured source.
func (p *Provider) GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error) {
	if value := os.Getenv(envName); value != "" {
		p.logger.Debug("Using environment variable override", zap.String("env_name", envName))
		return value, nil
	}
	return p.GetSecret(ctx, secretName)
}

// Source returns the resolved secret source
func (p *Provider) Source() SecretSource {
	return p.source
}
