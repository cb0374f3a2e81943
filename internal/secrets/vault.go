package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"go.uber.org/zap"
)

// VaultConfig holds configuration for the vault client
type VaultConfig struct {
	VaultName    string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// VaultClient reads secrets from Azure Key Vault with an optional TTL cache
type VaultClient struct {
	client *azsecrets.Client
	cache  *secretCache
	logger *zap.Logger
}

// NewVaultClient creates a Key Vault client authenticated with
// DefaultAzureCredential (environment, managed identity or Azure CLI).
func NewVaultClient(cfg *VaultConfig, logger *zap.Logger) (*VaultClient, error) {
	if cfg.VaultName == "" {
		return nil, fmt.Errorf("vault name is required")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	vaultURL := fmt.Sprintf("https://%s.vault.azure.net/", cfg.VaultName)
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	var cache *secretCache
	if cfg.CacheEnabled {
		cache = newSecretCache(cfg.CacheTTL, time.Now)
	}

	logger.Info("Azure Key Vault client initialized",
		zap.String("vault_url", vaultURL),
		zap.Bool("cache_enabled", cfg.CacheEnabled),
	)

	return &VaultClient{client: client, cache: cache, logger: logger}, nil
}

// GetSecret returns the current version of a secret
func (v *VaultClient) GetSecret(ctx context.Context, name string) (string, error) {
	if value, ok := v.cache.get(name); ok {
		return value, nil
	}

	resp, err := v.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		v.logger.Error("Failed to get secret from Key Vault",
			zap.String("secret_name", name),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to get secret '%s': %w", name, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret '%s' has no value", name)
	}

	v.cache.put(name, *resp.Value)
	return *resp.Value, nil
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

// secretCache is safe for concurrent use. A nil cache stores nothing.
type secretCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cachedSecret
}

func newSecretCache(ttl time.Duration, now func() time.Time) *secretCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &secretCache{ttl: ttl, now: now, entries: make(map[string]cachedSecret)}
}

func (c *secretCache) get(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[name]
	if !ok {
		return "", false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, name)
		return "", false
	}
	return entry.value, true
}

func (c *secretCache) put(name, value string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = cachedSecret{value: value, expiresAt: c.now().Add(c.ttl)}
}
