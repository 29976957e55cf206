package coinbase

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAuth generates a throwaway EC key and builds an Auth around it.
func testAuth(t *testing.T) (*Auth, *ecdsa.PrivateKey) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})

	auth, err := NewAuth("organizations/test/apiKeys/test-key", string(pemBytes))
	require.NoError(t, err)
	return auth, key
}

func TestNewAuth_RejectsInvalidKey(t *testing.T) {
	_, err := NewAuth("key-name", "not a pem block")
	assert.Error(t, err)
}

func TestBearer(t *testing.T) {
	auth, key := testAuth(t)
	issuedAt := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return issuedAt }

	signed, err := auth.Bearer("GET", "api.coinbase.com", "/api/v3/brokerage/orders")
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"ES256"}), jwt.WithTimeFunc(func() time.Time { return issuedAt }))
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "coinbase-cloud", claims["iss"])
	assert.Equal(t, "organizations/test/apiKeys/test-key", claims["sub"])
	assert.Equal(t, "GET api.coinbase.com/api/v3/brokerage/orders", claims["uri"])
	assert.Equal(t, float64(issuedAt.Add(tokenTTL).Unix()), claims["exp"])
	assert.Equal(t, "organizations/test/apiKeys/test-key", token.Header["kid"])
	assert.NotEmpty(t, token.Header["nonce"])
}

func TestWalletAuth_Headers(t *testing.T) {
	w := NewWalletAuth("api-key", "api-secret")
	signedAt := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return signedAt }

	headers := w.Headers("GET", "/v2/accounts", "")

	assert.Equal(t, "api-key", headers["CB-ACCESS-KEY"])
	assert.Equal(t, "1710496800", headers["CB-ACCESS-TIMESTAMP"])

	mac := hmac.New(sha256.New, []byte("api-secret"))
	mac.Write([]byte("1710496800GET/v2/accounts"))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), headers["CB-ACCESS-SIGN"])
}
