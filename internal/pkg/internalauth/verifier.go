package internalauth

import (
	"crypto/hmac"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"sparke-core-be/internal/pkg/apperror"
)

// Request is the subset of an HTTP request the verifier inspects. The
// signature is always computed over the literal request as received.
type Request struct {
	Method    string
	Path      string
	Body      []byte
	Timestamp string // X-Timestamp
	Signature string // X-Signature
	BodyHash  string // X-Body-SHA256 (optional; must match the received body)
	LegacyKey string // X-Internal-API-Key
}

// Verifier authenticates oracle-worker callbacks without shared session
// state. An optional static legacy key can substitute when HMAC headers are
// entirely absent; that weaker path is disabled in hardened deployments.
type Verifier struct {
	secret         []byte
	legacyKey      string
	allowLegacyKey bool
	now            func() time.Time
}

func NewVerifier(secret, legacyKey string, allowLegacyKey bool) *Verifier {
	return &Verifier{
		secret:         []byte(secret),
		legacyKey:      legacyKey,
		allowLegacyKey: allowLegacyKey,
		now:            time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	v.now = now
	return v
}

func (v *Verifier) Verify(req Request) error {
	if len(v.secret) == 0 && !v.legacyConfigured() {
		return apperror.Unauthorized("internal auth not configured")
	}

	// Legacy fallback only applies when HMAC headers are missing entirely.
	if req.Timestamp == "" || req.Signature == "" {
		if v.legacyConfigured() && v.legacyMatches(req.LegacyKey) {
			return nil
		}
		return apperror.Unauthorized("missing signature headers")
	}

	ts, err := strconv.ParseInt(req.Timestamp, 10, 64)
	if err != nil {
		return apperror.Unauthorized("invalid timestamp")
	}

	skew := v.now().Unix() - ts
	if skew < 0 {
		skew = -skew
	}
	if skew > int64(MaxClockSkew/time.Second) {
		return apperror.Unauthorized("request expired")
	}

	if len(v.secret) == 0 {
		return apperror.Unauthorized("internal auth not configured")
	}

	// The signature is always checked against the hash of the body actually
	// received; a supplied X-Body-SHA256 must agree with it, otherwise a
	// captured signature could be replayed with a different body.
	bodyHash := HashBody(req.Body)
	if req.BodyHash != "" && !hmac.Equal([]byte(strings.ToLower(req.BodyHash)), []byte(bodyHash)) {
		return apperror.Unauthorized("body hash mismatch")
	}

	method := strings.ToUpper(req.Method)
	expected := computeSignature(v.secret, req.Timestamp, method, req.Path, bodyHash)

	supplied, err := hex.DecodeString(req.Signature)
	if err != nil {
		return apperror.Unauthorized("invalid signature")
	}
	want, _ := hex.DecodeString(expected)
	if len(supplied) != len(want) || !hmac.Equal(supplied, want) {
		return apperror.Unauthorized("invalid signature")
	}
	return nil
}

func (v *Verifier) legacyConfigured() bool {
	return v.allowLegacyKey && v.legacyKey != ""
}

func (v *Verifier) legacyMatches(supplied string) bool {
	if supplied == "" {
		return false
	}
	return hmac.Equal([]byte(supplied), []byte(v.legacyKey))
}
