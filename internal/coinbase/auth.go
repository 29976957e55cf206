package coinbase

import (
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Advanced Trade API tokens are accepted for at most one minute.
	tokenTTL    = 60 * time.Second
	serviceName = "retail_rest_api_proxy"
)

// ErrCredentialUnavailable is returned when a bearer token cannot be
// produced. The orchestrator treats it as a submission failure.
var ErrCredentialUnavailable = errors.New("credential unavailable")

// Auth produces short-lived ES256 bearer tokens for the Advanced Trade API.
type Auth struct {
	keyName string
	key     *ecdsa.PrivateKey
	now     func() time.Time
}

// NewAuth parses the PEM-encoded EC private key belonging to keyName.
func NewAuth(keyName, privateKeyPEM string) (*Auth, error) {
	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse coinbase private key: %w", err)
	}
	return &Auth{keyName: keyName, key: key, now: time.Now}, nil
}

// Bearer returns a signed JWT scoped to a single request URI, valid for
// tokenTTL from now.
func (a *Auth) Bearer(method, host, path string) (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"sub": a.keyName,
		"iss": "coinbase-cloud",
		"nbf": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
		"aud": []string{serviceName},
		"uri": fmt.Sprintf("%s %s%s", method, host, path),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = a.keyName
	token.Header["nonce"] = strconv.FormatInt(now.Unix(), 10)

	signed, err := token.SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCredentialUnavailable, err)
	}
	return signed, nil
}

// WalletAuth signs v2 wallet API requests with the legacy HMAC scheme.
type WalletAuth struct {
	apiKey    string
	apiSecret string
	now       func() time.Time
}

// NewWalletAuth creates a signer for the v2 wallet API.
func NewWalletAuth(apiKey, apiSecret string) *WalletAuth {
	return &WalletAuth{apiKey: apiKey, apiSecret: apiSecret, now: time.Now}
}

// Headers returns the CB-ACCESS-* headers for one request. The signature
// covers timestamp, method, path and body.
func (w *WalletAuth) Headers(method, path, body string) map[string]string {
	timestamp := strconv.FormatInt(w.now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(w.apiSecret))
	mac.Write([]byte(timestamp + method + path + body))

	return map[string]string{
		"CB-ACCESS-KEY":       w.apiKey,
		"CB-ACCESS-SIGN":      hex.EncodeToString(mac.Sum(nil)),
		"CB-ACCESS-TIMESTAMP": timestamp,
		"Content-Type":        "application/json",
	}
}
