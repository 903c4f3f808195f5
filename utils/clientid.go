package utils

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/google/uuid"
)

const (
	clientIDPrefix = "nlt_"
	apiKeyPrefix   = "key_"

	clientIDTokenLen = 16
	apiKeyTokenLen   = 32
)

// GenerateClientID returns a new tracker client identifier. Generated
// once at registration; never regenerated in place.
func GenerateClientID() string {
	return clientIDPrefix + randomToken(clientIDTokenLen)
}

// GenerateAPIKey returns a new client API key.
func GenerateAPIKey() string {
	return apiKeyPrefix + randomToken(apiKeyTokenLen)
}

func randomToken(n int) string {
	hash := sha256.Sum256([]byte(uuid.New().String()))
	token := base64.RawURLEncoding.EncodeToString(hash[:])
	for len(token) < n {
		next := sha256.Sum256([]byte(uuid.New().String()))
		token += base64.RawURLEncoding.EncodeToString(next[:])
	}
	return token[:n]
}
