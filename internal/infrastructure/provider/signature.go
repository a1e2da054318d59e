package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/stockdeck/marketplace-system/internal/core/domain"
)

// toleranceWindow bounds replay exposure: deliveries with a timestamp more
// than this far from now are rejected even with a valid signature.
const toleranceWindow = 300 * time.Second

// SignatureVerifier validates that a webhook delivery originated from the
// identity provider. Pure validation, no side effects.
type SignatureVerifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewSignatureVerifier builds a verifier with the pre-shared webhook secret.
// A missing secret is a configuration error, not a per-request failure.
func NewSignatureVerifier(secret string) (*SignatureVerifier, error) {
	if secret == "" {
		return nil, errors.New("provider: webhook secret not configured")
	}
	return &SignatureVerifier{
		secret:    []byte(secret),
		tolerance: toleranceWindow,
		now:       time.Now,
	}, nil
}

// Verify checks the HMAC-SHA256 signature over "<id>.<timestamp>.<body>"
// and the timestamp window. Every failure path returns
// domain.ErrInvalidSignature so the response code does not leak which check
// tripped.
func (v *SignatureVerifier) Verify(messageID, timestamp, signature string, body []byte) error {
	if messageID == "" || timestamp == "" || signature == "" {
		return fmt.Errorf("%w: missing headers", domain.ErrInvalidSignature)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", domain.ErrInvalidSignature)
	}
	age := v.now().UTC().Sub(time.Unix(ts, 0))
	if age > v.tolerance || age < -v.tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", domain.ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(messageID))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domain.ErrInvalidSignature
	}
	return nil
}
