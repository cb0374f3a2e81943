package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	values map[string]string
	calls  int
}

func (f *fakeFetcher) GetSecret(_ context.Context, name string) (string, error) {
	f.calls++
	v, ok := f.values[name]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func TestResolveSource(t *testing.T) {
	tests := []struct {
		source SecretSource
		env    string
		want   SecretSource
	}{
		{SourceAuto, "development", SourceEnvironment},
		{SourceAuto, "", SourceEnvironment},
		{SourceAuto, "production", SourceVault},
		{SourceAuto, "staging", SourceVault},
		{SourceEnvironment, "production", SourceEnvironment},
		{SourceVault, "development", SourceVault},
	}

	for _, tt := range tests {
		t.Run(string(tt.source)+"/"+tt.env, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveSource(tt.source, tt.env))
		})
	}
}

func TestProvider_EnvironmentSource(t *testing.T) {
	t.Setenv("ERP_TEST_SECRET", "from-env")
	p := NewProviderWithFetcher(SourceEnvironment, nil, zap.NewNop())

	v, err := p.GetSecret(context.Background(), "ERP_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)

	_, err = p.GetSecret(context.Background(), "ERP_TEST_SECRET_MISSING")
	assert.Error(t, err)
}

func TestProvider_VaultSourceWithEnvOverride(t *testing.T) {
	fetcher := &fakeFetcher{values: map[string]string{"jwt-signing-secret": "from-vault"}}
	p := NewProviderWithFetcher(SourceVault, fetcher, zap.NewNop())

	v, err := p.GetSecretOrEnv(context.Background(), "jwt-signing-secret", "ERP_TEST_JWT_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-vault", v)

	t.Setenv("ERP_TEST_JWT_SECRET", "override")
	v, err = p.GetSecretOrEnv(context.Background(), "jwt-signing-secret", "ERP_TEST_JWT_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "override", v)
	assert.Equal(t, 1, fetcher.calls)
}

func TestProvider_VaultSourceWithoutClient(t *testing.T) {
	p := NewProviderWithFetcher(SourceVault, nil, zap.NewNop())
	_, err := p.GetSecret(context.Background(), "anything")
	assert.Error(t, err)
}

func TestSecretCache_Expiry(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	c := newSecretCache(time.Minute, func() time.Time { return now })

	c.put("db-password", "s3cret")
	v, ok := c.get("db-password")
	assert.True(t, ok)
	assert.Equal(t, "s3cret", v)

	now = now.Add(time.Minute)
	_, ok = c.get("db-password")
	assert.False(t, ok)

	var disabled *secretCache
	disabled.put("x", "y")
	_, ok = disabled.get("x")
	assert.False(t, ok)
}
