// Package media issues authentication parameters for client-direct uploads
// to the media CDN. The server never proxies the bytes in that flow; it only
// vouches for the client with a short-lived signature.
package media

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// AuthParams is handed to the browser and forwarded verbatim to the CDN.
type AuthParams struct {
	Token     string `json:"token"`
	Expire    int64  `json:"expire"`
	Signature string `json:"signature"`
}

// Signer produces upload auth parameters with a shared private key.
type Signer struct {
	privateKey []byte
	ttl        time.Duration
}

func NewSigner(privateKey string, ttl time.Duration) *Signer {
	return &Signer{
		privateKey: []byte(privateKey),
		ttl:        ttl,
	}
}

// AuthParams mints a one-time token with an expiry and signs both.
func (s *Signer) AuthParams() AuthParams {
	token := uuid.NewString()
	expire := time.Now().Add(s.ttl).Unix()
	return AuthParams{
		Token:     token,
		Expire:    expire,
		Signature: s.sign(token, expire),
	}
}

// Verify reports whether the parameters were produced with this signer's key
// and have not expired.
func (s *Signer) Verify(params AuthParams) bool {
	if params.Expire < time.Now().Unix() {
		return false
	}
	expected := s.sign(params.Token, params.Expire)
	return hmac.Equal([]byte(expected), []byte(params.Signature))
}

func (s *Signer) sign(token string, expire int64) string {
	mac := hmac.New(sha1.New, s.privateKey)
	mac.Write([]byte(token + strconv.FormatInt(expire, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
