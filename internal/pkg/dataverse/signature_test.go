package dataverse

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "wh-secret"

func freshTimestamp() string {
	return fmt.Sprintf("%d", time.Now().Unix())
}

func TestVerifySignatureAccepts(t *testing.T) {
	t.Parallel()

	body := []byte(`{"event":"sync"}`)
	ts := freshTimestamp()
	sig := Sign(body, ts, testSecret)

	assert.True(t, strings.HasPrefix(sig, "sha256="))
	assert.NoError(t, VerifySignature(body, ts, sig, testSecret))
}

func TestVerifySignatureRejectsTamperedBody(t *testing.T) {
	t.Parallel()

	ts := freshTimestamp()
	sig := Sign([]byte(`{"stock":1}`), ts, testSecret)

	err := VerifySignature([]byte(`{"stock":9999}`), ts, sig, testSecret)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	body := []byte(`{}`)
	ts := freshTimestamp()
	sig := Sign(body, ts, "other-secret")

	err := VerifySignature(body, ts, sig, testSecret)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignatureRejectsStaleTimestamp(t *testing.T) {
	t.Parallel()

	body := []byte(`{}`)
	stale := fmt.Sprintf("%d", time.Now().Add(-6*time.Minute).Unix())
	sig := Sign(body, stale, testSecret)

	err := VerifySignature(body, stale, sig, testSecret)
	assert.ErrorIs(t, err, ErrStaleTimestamp)
}

func TestVerifySignatureRejectsFutureTimestamp(t *testing.T) {
	t.Parallel()

	body := []byte(`{}`)
	future := fmt.Sprintf("%d", time.Now().Add(10*time.Minute).Unix())
	sig := Sign(body, future, testSecret)

	err := VerifySignature(body, future, sig, testSecret)
	assert.ErrorIs(t, err, ErrStaleTimestamp)
}

func TestVerifySignatureRejectsGarbageTimestamp(t *testing.T) {
	t.Parallel()

	err := VerifySignature([]byte(`{}`), "not-a-number", "sha256=00", testSecret)
	assert.ErrorIs(t, err, ErrStaleTimestamp)
}

func TestVerifySignatureRequiresSecret(t *testing.T) {
	t.Parallel()

	err := VerifySignature([]byte(`{}`), freshTimestamp(), "sha256=00", "")
	assert.ErrorIs(t, err, ErrNoSecret)
}
