package token

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Type discriminates access tokens from refresh tokens. Every token the
// service issues carries its type in the "type" claim so that a refresh
// token can never be replayed against an endpoint expecting an access
// token, and vice versa.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

const signingAlg = "RS256"

// reservedClaims are managed by the service and silently dropped from
// caller-supplied custom claims on Generate.
var reservedClaims = map[string]struct{}{
	"iss":     {},
	"sub":     {},
	"iat":     {},
	"exp":     {},
	"jti":     {},
	"type":    {},
	"user_id": {},
}

// Service signs and verifies RS256 JWTs for a single issuer. A service
// built from only a public key can verify but not sign.
type Service struct {
	issuer    string
	private   *rsa.PrivateKey
	public    *rsa.PublicKey
	accessTTL time.Duration
	clock     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.clock = now }
}

// New builds a signing service from a PEM-encoded RSA private key
// (PKCS#1 or PKCS#8). Encrypted PEM blocks are rejected with ErrKeyLoad.
func New(issuer string, privatePEM []byte, opts ...Option) (*Service, error) {
	key, err := parsePrivateKey(privatePEM)
	if err != nil {
		return nil, err
	}
	s := &Service{
		issuer:  issuer,
		private: key,
		public:  &key.PublicKey,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewVerifier builds a verify-only service from a PEM-encoded RSA public
// key. Generate on the returned service fails with ErrNoPrivateKey.
func NewVerifier(issuer string, publicPEM []byte, opts ...Option) (*Service, error) {
	key, err := parsePublicKey(publicPEM)
	if err != nil {
		return nil, err
	}
	s := &Service{
		issuer: issuer,
		public: key,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Generate signs a token of the given type for subject. Custom claims
// colliding with reserved claim names (iss, sub, iat, exp, jti, type,
// user_id) are dropped. A non-positive ttl produces an already-expired
// token; verification of such a token always fails with ErrExpired.
func (s *Service) Generate(subject string, custom map[string]any, ttl time.Duration, typ Type) (string, error) {
	if s.private == nil {
		return "", ErrNoPrivateKey
	}
	now := s.clock()
	claims := jwt.MapClaims{
		"iss":     s.issuer,
		"sub":     subject,
		"user_id": subject,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
		"jti":     uuid.NewString(),
		"type":    string(typ),
	}
	for k, v := range custom {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		claims[k] = v
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.private)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// VerifyOption adjusts a single Verify call.
type VerifyOption func(*verifyConfig)

type verifyConfig struct {
	skipIssuer bool
	wantType   Type
	leeway     time.Duration
}

// WithoutIssuerCheck disables the iss claim comparison for this call.
func WithoutIssuerCheck() VerifyOption {
	return func(c *verifyConfig) { c.skipIssuer = true }
}

// WithTokenType requires the token's type claim to match typ.
func WithTokenType(typ Type) VerifyOption {
	return func(c *verifyConfig) { c.wantType = typ }
}

// WithLeeway tolerates clock skew of up to d when checking expiry.
func WithLeeway(d time.Duration) VerifyOption {
	return func(c *verifyConfig) { c.leeway = d }
}

// Verify parses and validates a signed token. The signing algorithm is
// pinned to RS256; tokens declaring any other alg in their header fail
// with ErrInvalidSignature before the signature is checked.
func (s *Service) Verify(raw string, opts ...VerifyOption) (*Claims, error) {
	cfg := verifyConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingAlg}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock),
	}
	if cfg.leeway > 0 {
		parserOpts = append(parserOpts, jwt.WithLeeway(cfg.leeway))
	}

	var mc jwt.MapClaims
	_, err := jwt.NewParser(parserOpts...).ParseWithClaims(raw, &mc, func(*jwt.Token) (any, error) {
		return s.public, nil
	})
	if err != nil {
		return nil, mapParseError(err)
	}

	if !cfg.skipIssuer {
		iss, _ := mc["iss"].(string)
		if iss != s.issuer {
			return nil, ErrIssuerMismatch
		}
	}

	claims := claimsFromMap(mc)
	if cfg.wantType != "" && claims.TokenType != cfg.wantType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

func parsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", ErrKeyLoad)
	}
	if block.Type == "ENCRYPTED PRIVATE KEY" || len(block.Headers) > 0 {
		return nil, fmt.Errorf("%w: encrypted keys are not supported", ErrKeyLoad)
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: key is %T, want *rsa.PrivateKey", ErrKeyLoad, parsed)
	}
	return key, nil
}

func parsePublicKey(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", ErrKeyLoad)
	}
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: key is %T, want *rsa.PublicKey", ErrKeyLoad, parsed)
	}
	return key, nil
}
