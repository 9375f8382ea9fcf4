package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ai-agent-character-demo/client/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentFallbackWhenDisabled(t *testing.T) {
	t.Setenv("STORAGE_ENCRYPTION_KEY", "from-env")

	m, err := NewVaultManager(VaultConfig{Enabled: false}, logger.Discard())
	require.NoError(t, err)

	v, err := m.GetSecret(context.Background(), KeyStorageEncryption)
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)

	_, err = m.GetSecret(context.Background(), "missing-key")
	assert.ErrorIs(t, err, ErrSecretNotFound)
	assert.Equal(t, "dflt", m.GetSecretWithDefault(context.Background(), "missing-key", "dflt"))
}

func TestEnabledRequiresAddressAndToken(t *testing.T) {
	_, err := NewVaultManager(VaultConfig{Enabled: true, Token: "t"}, logger.Discard())
	assert.ErrorIs(t, err, ErrNoVaultAddress)

	_, err = NewVaultManager(VaultConfig{Enabled: true, Address: "http://vault"}, logger.Discard())
	assert.ErrorIs(t, err, ErrNoVaultToken)
}

func TestReadsKVv2AndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/v1/secret/data/aicharacters-client", r.URL.Path)
		assert.Equal(t, "root", r.Header.Get("X-Vault-Token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"request_id":"1","lease_id":"","renewable":false,"lease_duration":0,
			"data":{"data":{"storage-encryption-key":"from-vault"},
			"metadata":{"created_time":"2024-01-01T00:00:00Z","custom_metadata":null,"deletion_time":"","destroyed":false,"version":1}},
			"warnings":null}`))
	}))
	defer srv.Close()
	t.Setenv("AICHARACTERS_PASSWORD", "env-pw")

	m, err := NewVaultManager(VaultConfig{Enabled: true, Address: srv.URL, Token: "root", Timeout: time.Second}, logger.Discard())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		v, err := m.GetSecret(context.Background(), KeyStorageEncryption)
		require.NoError(t, err)
		assert.Equal(t, "from-vault", v)
	}
	assert.EqualValues(t, 1, hits.Load())

	// present in neither the secret nor the cache, so the environment answers
	v, err := m.GetSecret(context.Background(), KeyCLIPassword)
	require.NoError(t, err)
	assert.Equal(t, "env-pw", v)
}

func TestDefaultManager(t *testing.T) {
	SetManager(nil)
	_, err := GetSecret(context.Background(), "x")
	assert.ErrorIs(t, err, ErrManagerNotInitialized)
	assert.Equal(t, "d", GetSecretWithDefault(context.Background(), "x", "d"))

	m, err := NewVaultManager(VaultConfig{}, logger.Discard())
	require.NoError(t, err)
	SetManager(m)
	t.Cleanup(func() { SetManager(nil) })

	t.Setenv("SOME_SECRET", "v")
	got, err := GetSecret(context.Background(), "some.secret")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}
