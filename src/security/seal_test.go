package security

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestKey(t *testing.T) {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	t.Setenv("EXCHANGE_CREDENTIALS_KEY", base64.StdEncoding.EncodeToString(key))
}

func TestSealRoundTrip(t *testing.T) {
	setTestKey(t)

	sealed, err := EncryptString("api-secret-123")
	require.NoError(t, err)
	assert.NotEqual(t, "api-secret-123", sealed)

	plaintext, err := DecryptString(sealed)
	require.NoError(t, err)
	assert.Equal(t, "api-secret-123", plaintext)
}

func TestSealProducesDistinctCiphertexts(t *testing.T) {
	setTestKey(t)

	a, err := EncryptString("same")
	require.NoError(t, err)
	b, err := EncryptString("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	setTestKey(t)

	sealed, err := EncryptString("secret")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sealed)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	_, err = DecryptString(base64.StdEncoding.EncodeToString(raw))
	assert.Error(t, err)
}

func TestEncryptRequiresKey(t *testing.T) {
	t.Setenv("EXCHANGE_CREDENTIALS_KEY", "")
	_, err := EncryptString("secret")
	assert.ErrorIs(t, err, ErrKeyNotSet)
}
