package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenLifetime = 30 * time.Minute

// TokenConfig is shared by the Issuer and the Validator. It is read-only after
// construction.
type TokenConfig struct {
	Key      string
	Issuer   string
	Audience string
	Lifetime time.Duration
}

func (c TokenConfig) normalize() (TokenConfig, error) {
	if c.Key == "" {
		return c, fmt.Errorf("%w: jwt signing key", ErrConfigurationMissing)
	}
	if c.Issuer == "" {
		return c, fmt.Errorf("%w: jwt issuer", ErrConfigurationMissing)
	}
	if c.Audience == "" {
		c.Audience = c.Issuer
	}
	if c.Lifetime <= 0 {
		c.Lifetime = DefaultTokenLifetime
	}
	return c, nil
}

// Claims carried by every token. The identity is the user id, stored in sub.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() string {
	return c.Subject
}

// Validate is called by the jwt parser after the registered claims pass.
func (c *Claims) Validate() error {
	if c.Subject == "" {
		return errors.New("empty subject")
	}
	if !c.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, c.Role)
	}
	return nil
}

// TokenOption adjusts an Issuer or Validator.
type TokenOption func(*tokenOptions)

type tokenOptions struct {
	now func() time.Time
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) TokenOption {
	return func(o *tokenOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []TokenOption) tokenOptions {
	o := tokenOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type Issuer struct {
	cfg TokenConfig
	key []byte
	now func() time.Time
}

func NewIssuer(cfg TokenConfig, opts ...TokenOption) (*Issuer, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &Issuer{cfg: cfg, key: []byte(cfg.Key), now: o.now}, nil
}

// Issue signs an HS256 token for identity and role. It returns the token and
// its expiry.
func (i *Issuer) Issue(identity string, role Role) (string, time.Time, error) {
	if identity == "" {
		return "", time.Time{}, fmt.Errorf("%w: empty identity", ErrInvalidInput)
	}
	if !role.Valid() {
		return "", time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	now := i.now().UTC().Truncate(jwt.TimePrecision)
	exp := now.Add(i.cfg.Lifetime)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Validator checks signature, issuer, audience and the [iat, exp) window.
// It is safe for concurrent use.
type Validator struct {
	key    []byte
	parser *jwt.Parser
}

func NewValidator(cfg TokenConfig, opts ...TokenOption) (*Validator, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(o.now),
	)
	return &Validator{key: []byte(cfg.Key), parser: parser}, nil
}

func (v *Validator) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return nil, mapJWTError(err)
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrTokenSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return fmt.Errorf("%w: %w", ErrTokenClaimsInvalid, err)
	default:
		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
}
