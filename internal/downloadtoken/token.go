package downloadtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Payload is the signed content of a download token. A token grants access
// to exactly one attachment of one report until it expires.
type Payload struct {
	AttachmentID string `json:"attachmentId"`
	ReportID     string `json:"reportId"`
	ExpiresAt    int64  `json:"expiresAt"` // epoch milliseconds
}

// Matches reports whether the payload was issued for the given report and
// attachment pair.
func (p Payload) Matches(reportID, attachmentID string) bool {
	return p.ReportID == reportID && p.AttachmentID == attachmentID
}

// ErrInvalidToken is returned for every rejected token. Malformed, forged
// and expired tokens are indistinguishable to the caller.
var ErrInvalidToken = errors.New("invalid token")

// DefaultTTL is the token lifetime used when the caller does not specify one.
const DefaultTTL = 60 * time.Minute

// Service issues and validates stateless HMAC-signed download tokens. There
// is no revocation: a leaked token stays valid until it expires.
type Service struct {
	secret []byte

	// Now is the clock used for expiry; overridable in tests.
	Now func() time.Time
}

// NewService builds a token service keyed by the given secret. An empty
// secret falls back to a development default.
func NewService(secret string) *Service {
	if strings.TrimSpace(secret) == "" {
		secret = "dev-secret"
	}
	return &Service{
		secret: []byte(secret),
		Now:    time.Now,
	}
}

// Issue creates a token for the attachment and report pair, expiring after
// ttl. A non-positive ttl yields an already-expired token.
func (s *Service) Issue(attachmentID, reportID string, ttl time.Duration) (string, error) {
	payload := Payload{
		AttachmentID: attachmentID,
		ReportID:     reportID,
		ExpiresAt:    s.Now().UTC().Add(ttl).UnixMilli(),
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	// The signature covers the encoded segment, so verification does not
	// depend on JSON key ordering.
	encoded := base64.RawURLEncoding.EncodeToString(payloadJSON)
	return encoded + "." + s.sign(encoded), nil
}

// Validate checks the signature and expiry and returns the payload. Every
// failure mode returns ErrInvalidToken.
func (s *Service) Validate(token string) (Payload, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return Payload{}, ErrInvalidToken
	}

	expectedSig := s.sign(parts[0])
	if !hmac.Equal([]byte(parts[1]), []byte(expectedSig)) {
		return Payload{}, ErrInvalidToken
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return Payload{}, ErrInvalidToken
	}

	var payload Payload
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return Payload{}, ErrInvalidToken
	}

	if payload.AttachmentID == "" || payload.ReportID == "" {
		return Payload{}, ErrInvalidToken
	}

	if s.Now().UTC().UnixMilli() >= payload.ExpiresAt {
		return Payload{}, ErrInvalidToken
	}

	return payload, nil
}

func (s *Service) sign(input string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(input))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
