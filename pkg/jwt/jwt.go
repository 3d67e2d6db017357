package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const algorithm = "HS256"

type header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// DefaultTrialTTL is how long a trial token stays valid.
const DefaultTrialTTL = 7 * 24 * time.Hour

// Service signs and verifies HS256 tokens.
type Service struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTrialTTL sets the lifetime of tokens issued by IssueTrial.
func WithTrialTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithClock overrides the time source used for iat and exp.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a service signing with key.
func New(key string, opts ...Option) (*Service, error) {
	if key == "" {
		return nil, ErrMissingSigningKey
	}
	s := &Service{key: []byte(key), ttl: DefaultTrialTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IssueTrial signs a trial token for email expiring after the trial TTL.
func (s *Service) IssueTrial(email string) (string, TrialClaims, error) {
	now := s.now()
	claims := TrialClaims{
		Email:     email,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	token, err := s.Sign(claims)
	return token, claims, err
}

// Sign encodes claims and signs them.
func (s *Service) Sign(claims any) (string, error) {
	if claims == nil {
		return "", ErrMissingClaims
	}

	h, err := json.Marshal(header{Type: "JWT", Algorithm: algorithm})
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}
	c, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	payload := encode(h) + "." + encode(c)
	return payload + "." + s.sign(payload), nil
}

// Parse verifies token and decodes its claims. If claims has a Valid
// method, its error is returned after decoding.
func (s *Service) Parse(token string, claims any) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}

	expected := s.sign(parts[0] + "." + parts[1])
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expected)) != 1 {
		return ErrInvalidSignature
	}

	raw, err := decode(parts[0])
	if err != nil {
		return fmt.Errorf("%w: header: %w", ErrInvalidToken, err)
	}
	var h header
	if err := json.Unmarshal(raw, &h); err != nil {
		return fmt.Errorf("%w: header: %w", ErrInvalidToken, err)
	}
	if h.Algorithm != algorithm {
		return ErrUnexpectedSigningMethod
	}

	if err := decodeClaims(parts[1], claims); err != nil {
		return err
	}
	if v, ok := claims.(interface{ Valid() error }); ok {
		return v.Valid()
	}
	return nil
}

// DecodeUnverified decodes the claims segment without checking the
// signature. Use it only where the token came from a trusted issuer and
// the holder merely needs to read it, e.g. to check exp locally.
func DecodeUnverified(token string, claims any) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}
	return decodeClaims(parts[1], claims)
}

func decodeClaims(segment string, claims any) error {
	if claims == nil {
		return ErrMissingClaims
	}
	raw, err := decode(segment)
	if err != nil {
		return fmt.Errorf("%w: claims: %w", ErrInvalidToken, err)
	}
	if err := json.Unmarshal(raw, claims); err != nil {
		return fmt.Errorf("%w: claims: %w", ErrInvalidToken, err)
	}
	return nil
}

func (s *Service) sign(payload string) string {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(payload))
	return encode(h.Sum(nil))
}

func encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func decode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
