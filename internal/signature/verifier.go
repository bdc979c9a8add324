// Package signature authenticates Slack webhook requests.
//
// Slack signs each request with HMAC-SHA256 over "v0:<timestamp>:<body>"
// using the app's signing secret and sends the result as "v0=<hex>".
// The timestamp bounds how long a captured request stays valid.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"time"
)

const (
	HeaderTimestamp = "X-Slack-Request-Timestamp"
	HeaderSignature = "X-Slack-Signature"

	version = "v0"

	// DefaultWindow is the maximum clock distance accepted between the
	// request timestamp and now.
	DefaultWindow = 5 * time.Minute
)

var (
	ErrMissingHeader      = errors.New("signature: missing header")
	ErrMalformedTimestamp = errors.New("signature: malformed timestamp")
	ErrReplayRejected     = errors.New("signature: timestamp outside replay window")
	ErrInvalidSignature   = errors.New("signature: invalid signature")
)

// IsAuthError reports whether err is one of the verifier's rejections.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMissingHeader) ||
		errors.Is(err, ErrMalformedTimestamp) ||
		errors.Is(err, ErrReplayRejected) ||
		errors.Is(err, ErrInvalidSignature)
}

// Verifier checks request signatures against one signing secret.
type Verifier struct {
	secret  []byte
	window  time.Duration
	nowFunc func() time.Time
}

// NewVerifier returns a Verifier. A non-positive window falls back to DefaultWindow.
func NewVerifier(secret string, window time.Duration) *Verifier {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Verifier{
		secret:  []byte(secret),
		window:  window,
		nowFunc: time.Now,
	}
}

// VerifyRequest pulls the timestamp and signature headers from h and verifies body.
// body must be the raw request bytes, before any form or JSON decoding.
func (v *Verifier) VerifyRequest(h http.Header, body []byte) error {
	ts := h.Get(HeaderTimestamp)
	sig := h.Get(HeaderSignature)
	if ts == "" || sig == "" {
		return ErrMissingHeader
	}
	return v.Verify(ts, sig, body)
}

// Verify checks a single request. The timestamp window is enforced before
// the signature so stale requests are rejected even when correctly signed.
func (v *Verifier) Verify(timestamp, signature string, body []byte) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrMalformedTimestamp
	}

	// whole seconds; a Duration difference saturates for far-off timestamps
	now := v.nowFunc().Unix()
	w := int64(v.window / time.Second)
	if ts < now-w || ts > now+w {
		return ErrReplayRejected
	}

	expected := v.sign(timestamp, body)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return ErrInvalidSignature
	}
	return nil
}

// Sign returns the header value Slack would send for timestamp and body.
func (v *Verifier) Sign(timestamp string, body []byte) string {
	return v.sign(timestamp, body)
}

func (v *Verifier) sign(timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(version + ":" + timestamp + ":"))
	mac.Write(body)
	return version + "=" + hex.EncodeToString(mac.Sum(nil))
}
