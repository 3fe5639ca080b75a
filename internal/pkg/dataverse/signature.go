package dataverse

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"
	"strconv"
	"time"
)

// MaxTimestampSkew is the accepted age of a webhook call in either direction.
const MaxTimestampSkew = 5 * time.Minute

var (
	ErrNoSecret         = errors.New("dataverse: webhook secret is not configured")
	ErrStaleTimestamp   = errors.New("dataverse: stale or missing timestamp")
	ErrInvalidSignature = errors.New("dataverse: invalid signature")
)

// Sign computes the signature the sender is expected to attach: HMAC-SHA256
// over "<timestamp>.<rawBody>", rendered as "sha256=<hex>".
func Sign(raw []byte, timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(raw)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the timestamp freshness window and the HMAC in
// constant time. Comparison happens against the locally computed signature,
// never by parsing the attacker-supplied header.
func VerifySignature(raw []byte, timestamp, signature, secret string) error {
	if secret == "" {
		return ErrNoSecret
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrStaleTimestamp
	}
	skew := time.Duration(math.Abs(float64(time.Now().Unix()-ts))) * time.Second
	if skew > MaxTimestampSkew {
		return ErrStaleTimestamp
	}
	expected := Sign(raw, timestamp, secret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
