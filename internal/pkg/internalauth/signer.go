package internalauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Header names shared between the core service and the oracle worker.
const (
	HeaderTimestamp = "X-Timestamp"
	HeaderSignature = "X-Signature"
	HeaderBodyHash  = "X-Body-SHA256"
	HeaderLegacyKey = "X-Internal-API-Key"
)

// MaxClockSkew bounds how long a signed request stays valid (replay window).
const MaxClockSkew = 30 * time.Second

// Signer produces request signatures for the internal API. It lives here,
// next to the verifier, so worker clients and tests sign the exact canonical
// string the server expects.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the signature headers for a request. The canonical string is
// "{unix_ts}.{METHOD}.{path}.{sha256_hex(body)}" — method, path and body are
// all bound so a signature cannot be replayed against a different endpoint.
func (s *Signer) Sign(method, path string, body []byte, at time.Time) map[string]string {
	bodyHash := HashBody(body)
	ts := strconv.FormatInt(at.Unix(), 10)
	sig := computeSignature(s.secret, ts, method, path, bodyHash)
	return map[string]string{
		HeaderTimestamp: ts,
		HeaderSignature: sig,
		HeaderBodyHash:  bodyHash,
	}
}

// HashBody returns the lowercase hex SHA-256 of the request body.
func HashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func computeSignature(secret []byte, ts, method, path, bodyHash string) string {
	canonical := fmt.Sprintf("%s.%s.%s.%s", ts, method, path, bodyHash)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}
