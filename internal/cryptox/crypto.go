// Package cryptox holds the small amount of cryptography the client needs.
package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SecretHash computes the SECRET_HASH value required by user pool app clients
// that have a client secret: base64(HMAC-SHA256(secret, username+clientID)).
func SecretHash(username, clientID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(username + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
